package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/InfringeScope/pkg/client"
)

// NewReportsCmd creates the reports command.
func NewReportsCmd() *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Manage saved analysis reports",
	}
	reportsCmd.AddCommand(newReportsListCmd(), newReportsGetCmd(), newReportsSaveCmd())
	return reportsCmd
}

func newReportsListCmd() *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()

			reports, err := cliCtx.Client.Reports().List(ctx, skip, limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportList(reports))
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "number of reports to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of reports (0-50)")
	return cmd
}

func newReportsGetCmd() *cobra.Command {
	var html bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()

			if html {
				page, err := cliCtx.Client.Reports().HTML(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}
			report, err := cliCtx.Client.Reports().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportView{report})
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "print the rendered HTML page")
	return cmd
}

func newReportsSaveCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save an analysis JSON document as a report",
		Long: "Reads a company analysis (as printed by 'analyze company -o json') from\n" +
			"--file or stdin and stores it on the server.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open %s: %w", file, err)
				}
				defer f.Close()
				in = f
			}
			var analysis client.CompanyAnalysis
			if err := json.NewDecoder(in).Decode(&analysis); err != nil {
				return fmt.Errorf("decode analysis: %w", err)
			}
			if analysis.PatentID == "" || analysis.CompanyName == "" {
				return fmt.Errorf("analysis must include patent_id and company_name")
			}

			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()
			req := client.FromAnalysis(&analysis)
			if analysis.AnalysisDate.IsZero() {
				req.CreatedAt = nil
			}
			saved, err := cliCtx.Client.Reports().Save(ctx, req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportView{saved})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "analysis JSON file (default stdin)")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

type reportList []client.SavedReport

func (r reportList) JSONValue() interface{} { return []client.SavedReport(r) }

func (r reportList) TableHeaders() []string {
	return []string{"ID", "CREATED", "PATENT", "COMPANY", "RISK"}
}

func (r reportList) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, x := range r {
		rows = append(rows, []string{x.ID, x.CreatedAt.Format(time.RFC3339), x.PatentID, x.CompanyName, x.OverallRiskAssessment})
	}
	return rows
}

func (r reportList) String() string {
	if len(r) == 0 {
		return "No saved reports.\n"
	}
	var sb strings.Builder
	for _, x := range r {
		fmt.Fprintf(&sb, "%s  %s  %s / %s  %s\n", x.ID, x.CreatedAt.Format("2006-01-02 15:04"), x.PatentID, x.CompanyName, x.OverallRiskAssessment)
	}
	return sb.String()
}

type reportView struct{ *client.SavedReport }

func (r reportView) JSONValue() interface{} { return r.SavedReport }

func (r reportView) TableHeaders() []string {
	return findingsView(r.TopInfringingProducts).TableHeaders()
}

func (r reportView) TableRows() [][]string {
	return findingsView(r.TopInfringingProducts).TableRows()
}

func (r reportView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Report:  %s (%s)\n", r.ID, r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Patent:  %s  %s\n", r.PatentID, r.PatentTitle)
	fmt.Fprintf(&sb, "Company: %s\nRisk:    %s\n", r.CompanyName, colorRisk(r.OverallRiskAssessment))
	if len(r.TopInfringingProducts) > 0 {
		sb.WriteString("\n")
		sb.WriteString(findingsView(r.TopInfringingProducts).String())
	}
	return sb.String()
}

//Personal.AI order the ending
