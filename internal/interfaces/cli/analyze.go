package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/InfringeScope/pkg/client"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run infringement analyses",
	}
	analyzeCmd.AddCommand(newAnalyzeCompanyCmd(), newAnalyzeProductCmd())
	return analyzeCmd
}

func newAnalyzeCompanyCmd() *cobra.Command {
	var (
		patentID string
		company  string
		save     bool
	)
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Find a company's products most likely to infringe a patent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()

			cliCtx.Logger.Debug("requesting company analysis")
			result, err := cliCtx.Client.Analysis().Company(ctx, patentID, company)
			if err != nil {
				return err
			}
			if err := PrintResult(cmd, companyAnalysisView{result}); err != nil {
				return err
			}
			if !save {
				return nil
			}
			saved, err := cliCtx.Client.Reports().Save(ctx, client.FromAnalysis(result))
			if err != nil {
				return fmt.Errorf("analysis finished but saving failed: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved report %s\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&patentID, "patent", "", "patent publication number (required)")
	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	cmd.Flags().BoolVar(&save, "save", false, "save the analysis as a report")
	_ = cmd.MarkFlagRequired("patent")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func newAnalyzeProductCmd() *cobra.Command {
	var (
		patentID string
		product  client.Product
	)
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Score a single product description against a patent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()

			finding, err := cliCtx.Client.Analysis().Product(ctx, patentID, product)
			if err != nil {
				return err
			}
			return PrintResult(cmd, findingsView{*finding})
		},
	}
	cmd.Flags().StringVar(&patentID, "patent", "", "patent publication number (required)")
	cmd.Flags().StringVar(&product.Name, "name", "", "product name (required)")
	cmd.Flags().StringVar(&product.Description, "description", "", "product description")
	_ = cmd.MarkFlagRequired("patent")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

type findingsView []client.Finding

func (f findingsView) JSONValue() interface{} {
	if len(f) == 1 {
		return f[0]
	}
	return []client.Finding(f)
}

func (f findingsView) TableHeaders() []string {
	return []string{"PRODUCT", "SCORE", "LIKELIHOOD", "CLAIMS"}
}

func (f findingsView) TableRows() [][]string {
	rows := make([][]string, 0, len(f))
	for _, x := range f {
		rows = append(rows, []string{
			x.ProductName,
			strconv.FormatFloat(x.InfringementScore, 'f', -1, 64),
			x.InfringementLikelihood,
			strings.Join(x.RelevantClaims, ","),
		})
	}
	return rows
}

func (f findingsView) String() string {
	var sb strings.Builder
	for _, x := range f {
		fmt.Fprintf(&sb, "%s: %s (score %s)\n", x.ProductName, colorLikelihood(x.InfringementLikelihood),
			strconv.FormatFloat(x.InfringementScore, 'f', -1, 64))
		if len(x.RelevantClaims) > 0 {
			fmt.Fprintf(&sb, "  claims:   %s\n", strings.Join(x.RelevantClaims, ", "))
		}
		if len(x.SpecificFeatures) > 0 {
			fmt.Fprintf(&sb, "  features: %s\n", strings.Join(x.SpecificFeatures, "; "))
		}
		if x.Explanation != "" {
			fmt.Fprintf(&sb, "  %s\n", x.Explanation)
		}
	}
	return sb.String()
}

type companyAnalysisView struct{ *client.CompanyAnalysis }

func (c companyAnalysisView) JSONValue() interface{} { return c.CompanyAnalysis }

func (c companyAnalysisView) TableHeaders() []string {
	return findingsView(c.TopInfringingProducts).TableHeaders()
}

func (c companyAnalysisView) TableRows() [][]string {
	return findingsView(c.TopInfringingProducts).TableRows()
}

func (c companyAnalysisView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Patent:  %s\nCompany: %s\nRisk:    %s\n", c.PatentID, c.CompanyName, colorRisk(c.OverallRiskAssessment))
	if len(c.TopInfringingProducts) > 0 {
		sb.WriteString("\n")
		sb.WriteString(findingsView(c.TopInfringingProducts).String())
	}
	return sb.String()
}

func colorLikelihood(l string) string {
	switch l {
	case "High":
		return color.RedString(l)
	case "Moderate":
		return color.YellowString(l)
	case "Low":
		return color.GreenString(l)
	}
	return l
}

func colorRisk(r string) string {
	if strings.HasPrefix(r, "High") {
		return color.RedString(r)
	}
	return color.YellowString(r)
}

//Personal.AI order the ending
