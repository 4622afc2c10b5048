// Package servecmder provides the serve command for running the matching service.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/echoguardhq/echoguard/api"
	"github.com/echoguardhq/echoguard/api/mcp"
	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/config"
	"github.com/echoguardhq/echoguard/pkg/dotdir"
	"github.com/echoguardhq/echoguard/pkg/embeddings"
	"github.com/echoguardhq/echoguard/pkg/embeddings/fallback"
	embeddingutils "github.com/echoguardhq/echoguard/pkg/embeddings/utils"
	"github.com/echoguardhq/echoguard/pkg/eventstream"
	eskafka "github.com/echoguardhq/echoguard/pkg/eventstream/kafka"
	"github.com/echoguardhq/echoguard/pkg/eventstream/nop"
	"github.com/echoguardhq/echoguard/pkg/logger"
	"github.com/echoguardhq/echoguard/pkg/match"
	"github.com/echoguardhq/echoguard/pkg/relevance"
	"github.com/echoguardhq/echoguard/pkg/vector"
	vectorutils "github.com/echoguardhq/echoguard/pkg/vector/utils"
)

const serveLongDesc string = `Run the EchoGuard matching service.

Starts the HTTP API server with the MCP endpoint mounted at /mcp. The
vector store, embedding provider, and event stream are resolved from the
config file, environment, and flags.

Examples:
  echoguard serve
  echoguard serve --listen :9090
  echoguard serve --vector-store-provider qdrant --vector-store-target localhost:6334`

const serveShortDesc string = "Run the EchoGuard matching service"

var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name: "listen", Shorthand: "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite database",
	},
	config.FlagVectorStoreProv: {
		Name:        "vector-store-provider",
		ViperKey:    "vector_store.provider",
		Description: "Vector store provider (sqlite, qdrant)",
	},
	config.FlagVectorStoreTgt: {
		Name:        "vector-store-target",
		ViperKey:    "vector_store.target",
		Description: "Vector store target (file path or host:port)",
	},
	config.FlagVectorStoreColl: {
		Name:        "vector-store-collection",
		ViperKey:    "vector_store.collection",
		Description: "Vector store collection name",
	},
	config.FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider (clip, ollama, fallback)",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name:        "embedding-dimensions",
		ViperKey:    "embedding.dimensions",
		Description: "Embedding vector dimensions",
	},
	config.FlagTopK: {
		Name: "top-k", Shorthand: "k",
		ViperKey:    "matching.top_k",
		Description: "Number of candidates to retrieve per query",
	},
	config.FlagMinScore: {
		Name:        "min-score",
		ViperKey:    "matching.min_score",
		Description: "Minimum raw similarity for a candidate to be considered",
	},
	config.FlagImageWeight: {
		Name:        "image-weight",
		ViperKey:    "matching.image_weight",
		Description: "Image share of the fused query vector, in [0, 1]",
	},
}

type serveCommander struct {
	listen      string
	sqlitePath  string
	vectorProv  string
	vectorTgt   string
	vectorColl  string
	embedProv   string
	embedTgt    string
	embedModel  string
	embedDims   uint
	topK        uint
	minScore    float64
	imageWeight float64
	debug       bool
	configDir   string

	viper  *viper.Viper
	logger *slog.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	registryKeys := []string{
		config.FlagAPIListen,
		config.FlagSQLite,
		config.FlagVectorStoreProv,
		config.FlagVectorStoreTgt,
		config.FlagVectorStoreColl,
		config.FlagEmbeddingProv,
		config.FlagEmbeddingTgt,
		config.FlagEmbeddingModel,
		config.FlagEmbeddingDims,
		config.FlagTopK,
		config.FlagMinScore,
		config.FlagImageWeight,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, registryKeys)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreTgt, &cmder.vectorTgt)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreColl, &cmder.vectorColl)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.embedProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embedTgt)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embedModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.embedDims)
	config.AddUintFlag(cmd, serveFlags, config.FlagTopK, &cmder.topK)
	config.AddFloat64Flag(cmd, serveFlags, config.FlagMinScore, &cmder.minScore)
	config.AddFloat64Flag(cmd, serveFlags, config.FlagImageWeight, &cmder.imageWeight)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = logger.New(logger.WithDebug(c.debug))
	v := c.viper

	// Vector store
	driver, err := NewVectorDriver(ctx, v, c.configDir, c.logger)
	if err != nil {
		return err
	}

	// Embedding providers
	embedder, err := NewEmbedder(v)
	if err != nil {
		return err
	}
	fallbackEmbedder := fallback.NewEmbedder(v.GetUint("embedding.dimensions"))

	// Event stream
	publisher, err := newPublisher(v, c.logger)
	if err != nil {
		return err
	}

	matcher, err := match.NewMatcher(match.Options{
		Embedder:    embedder,
		Fallback:    fallbackEmbedder,
		Driver:      driver,
		Audit:       auditlog.NewStore(),
		Publisher:   publisher,
		Logger:      c.logger,
		TopK:        int(v.GetUint("matching.top_k")),
		MinScore:    v.GetFloat64("matching.min_score"),
		ImageWeight: v.GetFloat64("matching.image_weight"),
		Decay: relevance.DecayModel{
			WindowHours:    v.GetFloat64("matching.window_hours"),
			SpanMultiplier: v.GetFloat64("matching.span_multiplier"),
			Floor:          v.GetFloat64("matching.decay_floor"),
		},
	})
	if err != nil {
		return fmt.Errorf("creating matcher: %w", err)
	}
	defer matcher.Close()

	mcpServer, err := mcp.NewServer(mcp.Config{
		Matcher: matcher,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer := api.NewServer(api.Config{
		ListenAddr: v.GetString("api.listen"),
	}, matcher, mcpServer.Handler(), c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return apiServer.Shutdown()
	}
}

// NewVectorDriver builds the configured vector store driver. The sqlite
// provider resolves its database path through the dotdir when no explicit
// target is set.
func NewVectorDriver(ctx context.Context, v *viper.Viper, configDir string, log *slog.Logger) (vector.Driver, error) {
	target := v.GetString("vector_store.target")

	if v.GetString("vector_store.provider") == "sqlite" && target == "" {
		target = v.GetString("storage.sqlite_path")
		if target == "" {
			dir, err := dotdir.NewManager().Target(configDir)
			if err != nil {
				return nil, fmt.Errorf("resolving sqlite path: %w", err)
			}
			target = filepath.Join(dir, "echoguard.db")
		}
	}

	return vectorutils.NewDriver(ctx, &vectorutils.NewDriverOpts{
		ProviderType: v.GetString("vector_store.provider"),
		Target:       target,
		Collection:   v.GetString("vector_store.collection"),
		Dimensions:   v.GetUint("embedding.dimensions"),
		APIKey:       v.GetString("vector_store.api_key"),
		Logger:       log,
	})
}

// NewEmbedder builds the configured embedding provider.
func NewEmbedder(v *viper.Viper) (embeddings.Embedder, error) {
	return embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: v.GetString("embedding.provider"),
		TargetURL:    v.GetString("embedding.target"),
		Model:        v.GetString("embedding.model"),
		Dimensions:   v.GetUint("embedding.dimensions"),
	})
}

func newPublisher(v *viper.Viper, log *slog.Logger) (eventstream.Publisher, error) {
	if !v.GetBool("events.enabled") {
		return nop.NewPublisher(), nil
	}

	return eskafka.NewPublisher(eskafka.Config{
		Brokers: v.GetStringSlice("events.brokers"),
		Topic:   v.GetString("events.topic"),
	}, log)
}
