// Package analyzecmder provides the analyze command for matching a crisis
// report against the stored incident corpus.
package analyzecmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoguardhq/echoguard/pkg/cliui"
	"github.com/echoguardhq/echoguard/pkg/config"
	"github.com/echoguardhq/echoguard/pkg/dotdir"
	"github.com/echoguardhq/echoguard/pkg/match"
)

const analyzeLongDesc string = `Match a crisis description against the stored incident corpus.

Sends the description (and an optional image) to a running echoguard server,
prints the ranked matches and the selected response protocol, and records
the decision locally in .echoguard/last_report.json.

Examples:
  echoguard analyze "Severe flooding in downtown area, multiple buildings underwater"
  echoguard analyze "Wildfire spreading near residential zone" --image scene.jpg
  echoguard analyze "Gas leak reported" --api-target http://localhost:9090`

const analyzeShortDesc string = "Match a crisis description against stored incidents"

type analyzeCommander struct {
	apiTarget string
	imagePath string
	configDir string
}

func NewAnalyzeCmd() *cobra.Command {
	cmder := &analyzeCommander{}

	cmd := &cobra.Command{
		Use:   "analyze <description>",
		Short: analyzeShortDesc,
		Long:  analyzeLongDesc,
		Args:  cobra.ExactArgs(1),
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
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.run(args[0])
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "EchoGuard API server URL")
	cmd.Flags().StringVarP(&cmder.imagePath, "image", "i", "", "Path to an image of the scene")

	return cmd
}

func (c *analyzeCommander) run(description string) error {
	req := match.Request{Description: description}

	if c.imagePath != "" {
		data, err := os.ReadFile(c.imagePath)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		req.Image = data
	}

	var report match.Report
	err := cliui.Step(os.Stdout, "Analyzing crisis report", func() error {
		return c.postAnalyze(req, &report)
	})
	if err != nil {
		return err
	}

	printReport(os.Stdout, &report)

	// Persist so follow-up commands can show the latest decision without
	// hitting the API. Failure to save is not fatal to the analysis.
	lastReport := &dotdir.LastReport{
		IncidentID:  int64(report.IncidentID),
		Description: description,
		Confidence:  report.Confidence,
		Protocol:    report.ProtocolType,
		AnalyzedAt:  time.Now(),
	}
	if err := dotdir.NewManager().SaveLastReport(lastReport, c.configDir); err != nil {
		fmt.Fprintf(os.Stderr, "  %s could not save report locally: %v\n", cliui.FailMark, err)
	}

	return nil
}

func (c *analyzeCommander) postAnalyze(req match.Request, report *match.Report) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	resp, err := http.Post(c.apiTarget+"/v1/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calling analyze API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("analyze API returned %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(report); err != nil {
		return fmt.Errorf("decoding report: %w", err)
	}

	return nil
}

func printReport(w io.Writer, report *match.Report) {
	fmt.Fprintln(w)

	if len(report.Matches) == 0 {
		fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render("No similar incidents found."))
	}

	for i, m := range report.Matches {
		name := m.Meta.Type
		if name == "" {
			name = "incident"
		}
		if m.Meta.Location != "" {
			name = fmt.Sprintf("%s at %s", name, m.Meta.Location)
		}

		fmt.Fprintf(w, "  %d. %s\n", i+1, cliui.NameStyle.Render(name))
		fmt.Fprintf(w, "     %s %.1f%%   %s %.1f   %s %.2f\n",
			cliui.KeyStyle.Render("similarity"), m.SimilarityPercent,
			cliui.KeyStyle.Render("relevance"), m.RelevanceScore,
			cliui.KeyStyle.Render("decay"), m.DecayFactor,
		)
		if m.Meta.Severity != "" {
			fmt.Fprintf(w, "     %s %s\n", cliui.KeyStyle.Render("severity"), cliui.ValueStyle.Render(m.Meta.Severity))
		}
		for _, note := range m.DataQuality {
			fmt.Fprintf(w, "     %s\n", cliui.DimStyle.Render(note))
		}
	}

	fmt.Fprintf(w, "\n  %s %s %s\n",
		cliui.KeyStyle.Render("Protocol:"),
		cliui.NameStyle.Render(report.Protocol.Priority),
		cliui.DimStyle.Render(fmt.Sprintf("(confidence %.1f)", report.Confidence)),
	)
	for _, action := range report.Protocol.Actions {
		fmt.Fprintf(w, "    - %s\n", cliui.ValueStyle.Render(action))
	}

	fmt.Fprintf(w, "\n  %s\n", report.Explanation)

	for _, note := range report.Degraded {
		fmt.Fprintf(w, "  %s %s\n", cliui.FailMark, cliui.DimStyle.Render(note))
	}
}
