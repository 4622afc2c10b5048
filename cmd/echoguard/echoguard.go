// Package echoguardcmder
package echoguardcmder

import (
	"github.com/spf13/cobra"

	analyzecmder "github.com/echoguardhq/echoguard/cmd/echoguard/analyze"
	configcmder "github.com/echoguardhq/echoguard/cmd/echoguard/config"
	incidentscmder "github.com/echoguardhq/echoguard/cmd/echoguard/incidents"
	seedcmder "github.com/echoguardhq/echoguard/cmd/echoguard/seed"
	servecmder "github.com/echoguardhq/echoguard/cmd/echoguard/serve"
	versioncmder "github.com/echoguardhq/echoguard/cmd/version"
)

const echoguardLongDesc string = `EchoGuard matches crisis reports against historical incidents.

Run the matching service using:
  echoguard serve        Run the API and MCP server

Work with incidents using:
  echoguard analyze      Match a crisis description against stored incidents
  echoguard incidents    Show the audit log and stored incidents
  echoguard seed         Load the demo incident corpus`

const echoguardShortDesc string = "EchoGuard - Crisis Matching Engine"

func NewEchoguardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "echoguard",
		Short: echoguardShortDesc,
		Long:  echoguardLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .echoguard/ directory location")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(analyzecmder.NewAnalyzeCmd())
	cmd.AddCommand(incidentscmder.NewIncidentsCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
