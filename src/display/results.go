package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/facetrace/cli/src/model"
)

const (
	// ListLimit is the number of matches listed before truncating
	ListLimit = 20
	// BreakdownLimit is the number of platforms in the breakdown
	BreakdownLimit = 5
	// urlColumnWidth caps the URL column of the table format
	urlColumnWidth = 60
)

// Output formats
const (
	FormatSherlock = "sherlock"
	FormatTable    = "table"
	FormatJSON     = "json"
)

// Formats lists the accepted --format values
var Formats = []string{FormatSherlock, FormatTable, FormatJSON}

// Stats summarises a result set
type Stats struct {
	Total   int
	Average float64
	Top     int
}

// ComputeStats returns totals for matches
func ComputeStats(matches []model.Match) Stats {
	s := Stats{Total: len(matches)}
	if len(matches) == 0 {
		return s
	}
	sum := 0
	for _, m := range matches {
		sum += m.Score
		if m.Score > s.Top {
			s.Top = m.Score
		}
	}
	s.Average = float64(sum) / float64(len(matches))
	return s
}

// PlatformCount is one row of the platform breakdown
type PlatformCount struct {
	Platform string
	Count    int
}

// PlatformBreakdown counts matches per platform, most frequent first.
// Ties keep the order in which platforms first appear.
func PlatformBreakdown(matches []model.Match, limit int) []PlatformCount {
	index := map[string]int{}
	var counts []PlatformCount
	for _, m := range matches {
		i, ok := index[m.Platform]
		if !ok {
			i = len(counts)
			index[m.Platform] = i
			counts = append(counts, PlatformCount{Platform: m.Platform})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// MatchLine formats a match in the listing layout without colour
func MatchLine(m model.Match) string {
	user := ""
	if m.Username != "" {
		user = fmt.Sprintf(" %-20s", "@"+m.Username)
	}
	return fmt.Sprintf("%-12s | %-5s |%s %s", m.Platform, fmt.Sprintf("%d%%", m.Score), user, m.URL)
}

// Results prints the listing: up to ListLimit matches, then statistics and
// the platform breakdown
func (p *Printer) Results(matches []model.Match) {
	if len(matches) == 0 {
		p.Error("No matches found")
		return
	}

	p.Success("Found %d match(es)!", len(matches))
	p.Blank()
	p.Heading("Results:")
	p.Blank()

	shown := matches
	if len(shown) > ListLimit {
		shown = shown[:ListLimit]
	}
	for _, m := range shown {
		mark := p.r.NewStyle().Foreground(ScoreColor(m.Score)).Render("[+]")
		fmt.Fprintf(p.w, "%s %s\n", mark, MatchLine(m))
	}
	if len(matches) > ListLimit {
		p.Blank()
		p.Dim("... and %d more match(es)", len(matches)-ListLimit)
	}

	p.Stats(matches)
}

// Stats prints the statistics and platform breakdown
func (p *Printer) Stats(matches []model.Match) {
	s := ComputeStats(matches)

	p.Blank()
	p.Heading("Statistics:")
	fmt.Fprintf(p.w, "  Total matches: %d\n", s.Total)
	if s.Total > 0 {
		fmt.Fprintf(p.w, "  Avg. similarity: %.1f%%\n", s.Average)
		fmt.Fprintf(p.w, "  Top score: %d%%\n", s.Top)
	}

	p.Blank()
	p.Heading("Platforms:")
	for _, pc := range PlatformBreakdown(matches, BreakdownLimit) {
		fmt.Fprintf(p.w, "  %s: %d\n", pc.Platform, pc.Count)
	}
}

// Table prints matches as a rounded table
func (p *Printer) Table(matches []model.Match) {
	if len(matches) == 0 {
		p.Error("No matches found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("FaceTrace Results - %d matches found", len(matches)))
	t.AppendHeader(table.Row{"#", "Platform", "Score", "Username", "URL"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	shown := matches
	if len(shown) > ListLimit {
		shown = shown[:ListLimit]
	}
	for i, m := range shown {
		t.AppendRow(table.Row{i + 1, m.Platform, fmt.Sprintf("%d%%", m.Score), m.Username, truncate(m.URL, urlColumnWidth)})
	}
	t.AppendFooter(table.Row{"", "Total", len(matches), "", ""})
	t.Render()

	if len(matches) > ListLimit {
		p.Blank()
		p.Dim("... and %d more results", len(matches)-ListLimit)
	}
}

// jsonResult is the document printed by the json format
type jsonResult struct {
	TotalMatches     int           `json:"total_matches"`
	Matches          []model.Match `json:"matches"`
	RemainingCredits int           `json:"remaining_credits"`
}

// WriteJSON prints matches and the remaining balance as JSON
func WriteJSON(w io.Writer, matches []model.Match, remainingCredits int) error {
	if matches == nil {
		matches = []model.Match{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonResult{
		TotalMatches:     len(matches),
		Matches:          matches,
		RemainingCredits: remainingCredits,
	})
}

// truncate keeps the first max columns of s, counted by display width
func truncate(s string, max int) string {
	return text.Snip(s, max+3, "...")
}

// ValidFormat reports whether f is an accepted --format value
func ValidFormat(f string) bool {
	f = strings.ToLower(f)
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}
