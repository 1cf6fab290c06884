package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/InfringeScope/pkg/client"
)

type searchFlags struct {
	threshold int
	limit     int
}

func (f *searchFlags) options(cmd *cobra.Command) []client.QueryOption {
	var opts []client.QueryOption
	if cmd.Flags().Changed("threshold") {
		opts = append(opts, client.WithThreshold(f.threshold))
	}
	if cmd.Flags().Changed("limit") {
		opts = append(opts, client.WithLimit(f.limit))
	}
	return opts
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Fuzzy search patents and companies",
	}

	patentFlags := &searchFlags{}
	patentCmd := &cobra.Command{
		Use:   "patent <publication-number>",
		Short: "Search patents by publication number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()
			resp, err := cliCtx.Client.Search().PatentByID(ctx, args[0], patentFlags.options(cmd)...)
			if err != nil {
				return err
			}
			return PrintResult(cmd, patentMatches{resp})
		},
	}
	patentCmd.Flags().IntVar(&patentFlags.threshold, "threshold", 80, "minimum confidence (0-100)")

	companyFlags := &searchFlags{}
	companyCmd := &cobra.Command{
		Use:   "company <name>",
		Short: "Search companies by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()
			resp, err := cliCtx.Client.Search().Company(ctx, strings.Join(args, " "), companyFlags.options(cmd)...)
			if err != nil {
				return err
			}
			return PrintResult(cmd, companyMatches{resp})
		},
	}
	companyCmd.Flags().IntVar(&companyFlags.threshold, "threshold", 60, "minimum confidence (0-100)")

	titleFlags := &searchFlags{}
	titleCmd := &cobra.Command{
		Use:   "title <words...>",
		Short: "Search patents by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd)
			defer cancel()
			hits, err := cliCtx.Client.Search().PatentsByTitle(ctx, strings.Join(args, " "), titleFlags.options(cmd)...)
			if err != nil {
				return err
			}
			return PrintResult(cmd, titleHits(hits))
		},
	}
	titleCmd.Flags().IntVar(&titleFlags.threshold, "threshold", 60, "minimum confidence (0-100)")
	titleCmd.Flags().IntVar(&titleFlags.limit, "limit", 5, "maximum number of results (1-20)")

	searchCmd.AddCommand(patentCmd, companyCmd, titleCmd)
	return searchCmd
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

type patentMatches struct{ *client.SearchResponse }

func (p patentMatches) JSONValue() interface{} { return p.SearchResponse }

func (p patentMatches) TableHeaders() []string {
	return []string{"CONFIDENCE", "EXACT", "PUBLICATION", "TITLE"}
}

func (p patentMatches) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Matches))
	for _, m := range p.Matches {
		pat, _ := m.Patent()
		rows = append(rows, []string{strconv.Itoa(m.Confidence), strconv.FormatBool(m.IsExact), pat.PublicationNumber, pat.Title})
	}
	return rows
}

func (p patentMatches) String() string {
	if len(p.Matches) == 0 {
		return fmt.Sprintf("No patents match %q.\n", p.Query)
	}
	var sb strings.Builder
	for _, m := range p.Matches {
		pat, _ := m.Patent()
		fmt.Fprintf(&sb, "%3d  %s  %s\n", m.Confidence, pat.PublicationNumber, pat.Title)
	}
	if p.Suggestion != nil {
		fmt.Fprintf(&sb, "Best match: %s\n", *p.Suggestion)
	}
	return sb.String()
}

type companyMatches struct{ *client.SearchResponse }

func (c companyMatches) JSONValue() interface{} { return c.SearchResponse }

func (c companyMatches) TableHeaders() []string {
	return []string{"CONFIDENCE", "COMPANY", "PRODUCTS"}
}

func (c companyMatches) TableRows() [][]string {
	rows := make([][]string, 0, len(c.Matches))
	for _, m := range c.Matches {
		co, _ := m.Company()
		rows = append(rows, []string{strconv.Itoa(m.Confidence), co.Name, strconv.Itoa(len(co.Products))})
	}
	return rows
}

func (c companyMatches) String() string {
	if len(c.Matches) == 0 {
		return fmt.Sprintf("No companies match %q.\n", c.Query)
	}
	var sb strings.Builder
	for _, m := range c.Matches {
		co, _ := m.Company()
		fmt.Fprintf(&sb, "%3d  %s (%d products)\n", m.Confidence, co.Name, len(co.Products))
	}
	return sb.String()
}

type titleHits []client.PatentSuggestion

func (t titleHits) JSONValue() interface{} { return []client.PatentSuggestion(t) }

func (t titleHits) TableHeaders() []string { return []string{"CONFIDENCE", "PUBLICATION", "TITLE"} }

func (t titleHits) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, h := range t {
		rows = append(rows, []string{strconv.Itoa(h.Confidence), h.ID, h.Title})
	}
	return rows
}

func (t titleHits) String() string {
	if len(t) == 0 {
		return "No titles match.\n"
	}
	var sb strings.Builder
	for _, h := range t {
		fmt.Fprintf(&sb, "%3d  %s  %s\n", h.Confidence, h.ID, h.Title)
	}
	return sb.String()
}

//Personal.AI order the ending
