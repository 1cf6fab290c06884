package reporting

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/turtacn/InfringeScope/internal/domain/report"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Renderer formats reports as markdown and HTML. Raw HTML in report fields
// is dropped by the markdown converter.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a renderer with GitHub-flavored tables enabled.
func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Markdown returns the report as a markdown document.
func (r *Renderer) Markdown(rep *report.SavedReport) string {
	var b strings.Builder
	title := rep.PatentTitle
	if title == "" {
		title = rep.PatentID
	}
	fmt.Fprintf(&b, "# Infringement Report: %s\n\n", inline(title))

	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Report ID", rep.ID)
	row(&b, "Created", rep.CreatedAt.UTC().Format(time.RFC3339))
	row(&b, "Patent", rep.PatentID)
	row(&b, "Company", rep.CompanyName)
	row(&b, "Overall risk", rep.OverallRiskAssessment)
	b.WriteString("\n")

	if strings.TrimSpace(rep.PatentAbstract) != "" {
		b.WriteString("## Abstract\n\n")
		b.WriteString(inline(rep.PatentAbstract))
		b.WriteString("\n\n")
	}

	b.WriteString("## Top infringing products\n\n")
	if len(rep.TopInfringingProducts) == 0 {
		b.WriteString("No infringing products were identified.\n")
		return b.String()
	}
	for i, f := range rep.TopInfringingProducts {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, inline(f.ProductName))
		fmt.Fprintf(&b, "- **Score:** %s\n", strconv.FormatFloat(f.InfringementScore, 'f', -1, 64))
		fmt.Fprintf(&b, "- **Likelihood:** %s\n", inline(string(f.InfringementLikelihood)))
		if len(f.RelevantClaims) > 0 {
			fmt.Fprintf(&b, "- **Relevant claims:** %s\n", inline(strings.Join(f.RelevantClaims, ", ")))
		}
		for _, feature := range f.SpecificFeatures {
			fmt.Fprintf(&b, "- **Feature:** %s\n", inline(feature))
		}
		if strings.TrimSpace(f.Explanation) != "" {
			fmt.Fprintf(&b, "\n%s\n", inline(f.Explanation))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML returns the report as a complete HTML page.
func (r *Renderer) HTML(rep *report.SavedReport) ([]byte, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(r.Markdown(rep)), &body); err != nil {
		return nil, errors.Wrap(err, errors.CodeReportRenderFailed, "failed to render report")
	}
	var out bytes.Buffer
	out.WriteString("<!doctype html><html><head><meta charset=\"utf-8\"><title>")
	out.WriteString(html.EscapeString("Infringement Report " + rep.PatentID))
	out.WriteString("</title><style>")
	out.WriteString("body{font-family:sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem;color:#1c1917}")
	out.WriteString("table{border-collapse:collapse}th,td{border:1px solid #a8a29e;padding:.35rem .5rem;text-align:left}")
	out.WriteString("</style></head><body>")
	out.Write(body.Bytes())
	out.WriteString("</body></html>")
	return out.Bytes(), nil
}

func row(b *strings.Builder, field, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", field, strings.ReplaceAll(inline(value), "|", `\|`))
}

// inline flattens newlines so a value stays inside its markdown block.
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

//Personal.AI order the ending
