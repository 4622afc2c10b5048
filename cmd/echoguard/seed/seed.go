// Package seedcmder provides the seed command for loading the demo
// incident corpus into the vector store.
package seedcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	servecmder "github.com/echoguardhq/echoguard/cmd/echoguard/serve"
	"github.com/echoguardhq/echoguard/pkg/cliui"
	"github.com/echoguardhq/echoguard/pkg/config"
	"github.com/echoguardhq/echoguard/pkg/logger"
	"github.com/echoguardhq/echoguard/pkg/seed"
)

const seedLongDesc string = `Seed the demo incident corpus into the vector store.

Embeds a small set of historical crisis incidents (floods, fires,
earthquakes, landslides, cyclones) and stores them so analyze queries have
a corpus to match against. Re-running overwrites the same corpus entries.

Examples:
  echoguard seed
  echoguard seed --embedding-provider fallback
  echoguard seed --vector-store-provider qdrant --vector-store-target localhost:6334`

const seedShortDesc string = "Seed the demo incident corpus"

var seedFlags = config.FlagSet{
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
}

type seedCommander struct {
	sqlitePath string
	vectorProv string
	vectorTgt  string
	embedProv  string
	embedTgt   string
	debug      bool
	configDir  string

	viper *viper.Viper
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	registryKeys := []string{
		config.FlagSQLite,
		config.FlagVectorStoreProv,
		config.FlagVectorStoreTgt,
		config.FlagEmbeddingProv,
		config.FlagEmbeddingTgt,
	}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, seedFlags, registryKeys)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, seedFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, seedFlags, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, seedFlags, config.FlagVectorStoreTgt, &cmder.vectorTgt)
	config.AddStringFlag(cmd, seedFlags, config.FlagEmbeddingProv, &cmder.embedProv)
	config.AddStringFlag(cmd, seedFlags, config.FlagEmbeddingTgt, &cmder.embedTgt)

	return cmd
}

func (c *seedCommander) run(ctx context.Context) error {
	log := logger.New(logger.WithDebug(c.debug))

	driver, err := servecmder.NewVectorDriver(ctx, c.viper, c.configDir, log)
	if err != nil {
		return err
	}
	defer func() { _ = driver.Close() }()

	embedder, err := servecmder.NewEmbedder(c.viper)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	var count int
	if err := cliui.Step(os.Stdout, "Seeding demo incidents", func() error {
		var seedErr error
		count, seedErr = seed.Load(ctx, embedder, driver)
		return seedErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Seeded %s incidents %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(count)),
		cliui.DimStyle.Render(fmt.Sprintf("(provider: %s)", c.viper.GetString("vector_store.provider"))),
	)
	return nil
}
