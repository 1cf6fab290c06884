package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/report"
)

func TestMarkdown_EmptyFindings(t *testing.T) {
	md := NewRenderer().Markdown(&report.SavedReport{
		ID:        "r-1",
		PatentID:  "US-1",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	assert.True(t, strings.HasPrefix(md, "# Infringement Report: US-1\n"))
	assert.Contains(t, md, "| Created | 2024-01-02T03:04:05Z |")
	assert.Contains(t, md, "No infringing products were identified.")
	assert.NotContains(t, md, "## Abstract")
}

func TestMarkdown_KeepsTableIntact(t *testing.T) {
	md := NewRenderer().Markdown(&report.SavedReport{
		PatentID:    "US-1",
		CompanyName: "A | B\nCorp",
		TopInfringingProducts: []analysis.Finding{{
			ProductName:       "X",
			InfringementScore: 72.5,
		}},
	})
	assert.Contains(t, md, `| Company | A \| B Corp |`)
	assert.Contains(t, md, "- **Score:** 72.5\n")
}

func TestHTML_DropsRawMarkup(t *testing.T) {
	page, err := NewRenderer().HTML(&report.SavedReport{
		PatentID:    "US-<1>",
		PatentTitle: "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	out := string(page)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<title>Infringement Report US-&lt;1&gt;</title>")
}

//Personal.AI order the ending
