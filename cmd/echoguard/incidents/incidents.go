// Package incidentscmder provides the incidents command for inspecting the
// audit log and the stored incident corpus.
package incidentscmder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/cliui"
	"github.com/echoguardhq/echoguard/pkg/config"
	"github.com/echoguardhq/echoguard/pkg/dotdir"
	"github.com/echoguardhq/echoguard/pkg/utils"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

const incidentsLongDesc string = `Show the server's decision audit log, or the stored incident corpus.

By default the command fetches the audit log: every analyzed query and the
decisions recorded against it. With --stored it lists the incident corpus
held in the vector store instead.

Examples:
  echoguard incidents
  echoguard incidents --limit 10
  echoguard incidents --stored
  echoguard incidents --id 9b2e7c1a-...`

const incidentsShortDesc string = "Show the audit log and stored incidents"

type incidentsCommander struct {
	apiTarget string
	limit     uint
	stored    bool
	id        string
	configDir string
}

func NewIncidentsCmd() *cobra.Command {
	cmder := &incidentsCommander{}

	cmd := &cobra.Command{
		Use:   "incidents",
		Short: incidentsShortDesc,
		Long:  incidentsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "EchoGuard API server URL")
	cmd.Flags().UintVarP(&cmder.limit, "limit", "n", 0, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&cmder.stored, "stored", false, "List the stored incident corpus instead of the audit log")
	cmd.Flags().StringVar(&cmder.id, "id", "", "Show a single stored incident by ID")

	return cmd
}

func (c *incidentsCommander) run() error {
	if c.id != "" {
		return c.showOne(os.Stdout)
	}
	if c.stored {
		return c.showStored(os.Stdout)
	}
	return c.showAudit(os.Stdout)
}

func (c *incidentsCommander) showOne(w io.Writer) error {
	var doc vector.Document
	if err := getJSON(c.apiTarget+"/v1/crises/"+c.id, &doc); err != nil {
		return err
	}

	printDocument(w, doc)

	if doc.Meta.Severity != "" {
		fmt.Fprintf(w, "     %s %s\n", cliui.DimStyle.Render("severity"), doc.Meta.Severity)
	}
	if !doc.Meta.Timestamp.IsZero() {
		fmt.Fprintf(w, "     %s %s\n",
			cliui.DimStyle.Render("recorded"),
			doc.Meta.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}

func (c *incidentsCommander) showAudit(w io.Writer) error {
	url := c.apiTarget + "/v1/audit"
	if c.limit > 0 {
		url = fmt.Sprintf("%s?limit=%d", url, c.limit)
	}

	var snapshot auditlog.Snapshot
	if err := getJSON(url, &snapshot); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %d analyzed\n\n",
		cliui.NameStyle.Render("Audit log:"),
		snapshot.TotalCount,
	)

	if len(snapshot.MostRecent) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No queries analyzed yet."))
	}

	for _, incident := range snapshot.MostRecent {
		fmt.Fprintf(w, "  %s %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("#%d", incident.ID)),
			cliui.ValueStyle.Render(utils.Truncate(incident.Description, 72)),
		)
		fmt.Fprintf(w, "     %s\n", cliui.DimStyle.Render(incident.Timestamp.Format("2006-01-02 15:04:05")))

		for _, decision := range incident.Decisions {
			fmt.Fprintf(w, "     %s %s\n",
				cliui.DimStyle.Render(fmt.Sprintf("%.1f", decision.Confidence)),
				decision.DecisionSummary,
			)
		}
	}

	// The local last-report record is informational; skip it quietly when
	// missing or unreadable.
	if report, err := dotdir.NewManager().LoadLastReport(c.configDir); err == nil && report != nil {
		fmt.Fprintf(w, "\n%s #%d %s %s\n",
			cliui.NameStyle.Render("Last local analysis:"),
			report.IncidentID,
			cliui.ValueStyle.Render(report.Protocol),
			cliui.DimStyle.Render(fmt.Sprintf("(confidence %.1f, %s)",
				report.Confidence,
				report.AnalyzedAt.Format("2006-01-02 15:04:05"),
			)),
		)
	}

	return nil
}

// crisesResponse mirrors the GET /v1/crises body.
type crisesResponse struct {
	Count  int               `json:"count"`
	Crises []vector.Document `json:"crises"`
}

func (c *incidentsCommander) showStored(w io.Writer) error {
	url := c.apiTarget + "/v1/crises"
	if c.limit > 0 {
		url = fmt.Sprintf("%s?limit=%d", url, c.limit)
	}

	var resp crisesResponse
	if err := getJSON(url, &resp); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %d stored\n\n",
		cliui.NameStyle.Render("Incident corpus:"),
		resp.Count,
	)

	for _, doc := range resp.Crises {
		printDocument(w, doc)
		if doc.Meta.Severity != "" {
			fmt.Fprintf(w, "     %s %s\n", cliui.DimStyle.Render("severity"), doc.Meta.Severity)
		}
	}

	return nil
}

func printDocument(w io.Writer, doc vector.Document) {
	name := doc.Meta.Type
	if name == "" {
		name = "incident"
	}
	if doc.Meta.Location != "" {
		name = fmt.Sprintf("%s at %s", name, doc.Meta.Location)
	}

	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render(name), cliui.DimStyle.Render(doc.ID))
	if doc.Meta.Description != "" {
		fmt.Fprintf(w, "     %s\n", cliui.ValueStyle.Render(utils.Truncate(doc.Meta.Description, 72)))
	}
}

func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("calling API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
