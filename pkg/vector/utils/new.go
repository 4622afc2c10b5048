// Package vectorutils is the vector driver factory package.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/echoguardhq/echoguard/pkg/vector"
	"github.com/echoguardhq/echoguard/pkg/vector/qdrant"
	"github.com/echoguardhq/echoguard/pkg/vector/sqlitevec"
)

type NewDriverOpts struct {
	ProviderType string
	Target       string
	Collection   string
	Dimensions   uint
	APIKey       string
	Logger       *slog.Logger
}

// NewDriver constructs the configured vector store driver.
func NewDriver(ctx context.Context, o *NewDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Target:         o.Target,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
			APIKey:         o.APIKey,
		}, o.Logger)
	case "sqlite":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
