// Package configcmder provides the config command for managing persistent
// echoguard configuration stored in the .echoguard/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent echoguard configuration.

Configuration is stored as config.toml in the .echoguard/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, storage.sqlite_path, client.api_target,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  matching.top_k, matching.min_score, matching.image_weight,
  matching.window_hours, matching.span_multiplier, matching.decay_floor,
  events.enabled, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  echoguard config set <key> <value>    Set a configuration value
  echoguard config get <key>            Get a configuration value
  echoguard config list                 List all configuration values

Examples:
  echoguard config set vector_store.provider qdrant
  echoguard config set matching.top_k 5
  echoguard config get embedding.model
  echoguard config list`

const configShortDesc string = "Manage persistent echoguard configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
