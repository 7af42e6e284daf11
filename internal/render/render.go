// Package render formats pipeline output for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"copydesk/internal/core"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	scoreStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	rejectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	acceptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// Ideas renders a ranked idea list as a table.
func Ideas(ideas []core.ScoredIdea) string {
	if len(ideas) == 0 {
		return dimStyle.Render("No opportunities found.")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-42s %6s %8s %6s %-9s", "#", "KEYWORD", "SCORE", "VOLUME", "KD", "SOURCE")))
	sb.WriteString("\n")
	for i, idea := range ideas {
		line := fmt.Sprintf("%-4d %-42s %s %8d %6d %-9s",
			i+1,
			truncate(idea.Signal.Keyword, 42),
			scoreStyle.Render(fmt.Sprintf("%6d", idea.Score)),
			idea.Signal.SearchVolume,
			idea.Signal.KeywordDifficulty,
			idea.VolumeSource,
		)
		sb.WriteString(line)
		sb.WriteString("\n")
		if idea.Description != "" {
			sb.WriteString(dimStyle.Render("     " + truncate(idea.Description, 76)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Breakdown renders one idea's sub-score itemization.
func Breakdown(idea core.ScoredIdea) string {
	b := idea.Breakdown
	rows := []string{
		fmt.Sprintf("  volume      %3d / 30", b.SearchVolume),
		fmt.Sprintf("  difficulty  %3d / 20", b.KeywordDifficulty),
		fmt.Sprintf("  serp        %3d / 20", b.SERPFeatures),
		fmt.Sprintf("  questions   %3d / 20", b.RelatedQuestions),
		fmt.Sprintf("  shape       %3d / 10", b.KeywordQuality),
		fmt.Sprintf("  relevance   %3d / 10", b.RelevanceBonus),
	}
	return headerStyle.Render(fmt.Sprintf("%s - %d", idea.Signal.Keyword, idea.Score)) +
		"\n" + strings.Join(rows, "\n")
}

// Verdict renders a duplicate check outcome.
func Verdict(keyword string, v core.DuplicateVerdict) string {
	var sb strings.Builder
	if v.IsDuplicate {
		sb.WriteString(rejectStyle.Render("DUPLICATE"))
	} else if v.Similarity >= 0.30 {
		sb.WriteString(warnStyle.Render("SIMILAR"))
	} else {
		sb.WriteString(acceptStyle.Render("CLEAR"))
	}
	sb.WriteString(fmt.Sprintf("  %q - %s", keyword, v.Reason))
	if v.Matched != nil {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  closest: %s (similarity %.2f)", v.Matched.ID, v.Similarity)))
	}
	return sb.String()
}

// Attempts renders a generation retry history.
func Attempts(attempts []core.GenerationAttempt) string {
	var sb strings.Builder
	for _, a := range attempts {
		status := rejectStyle.Render("rejected")
		detail := a.Err
		if a.Accepted {
			status = acceptStyle.Render("accepted")
			detail = fmt.Sprintf("%d words", a.WordCount)
		}
		sb.WriteString(fmt.Sprintf("  attempt %d (asked %d words): %s - %s\n",
			a.Number, a.MinWordsRequested, status, detail))
	}
	return sb.String()
}

// Resources renders a resolved resource set.
func Resources(set core.ResolvedResourceSet) string {
	var sb strings.Builder
	if set.Primary != nil {
		sb.WriteString(headerStyle.Render("primary") + fmt.Sprintf("   [%s] %s\n", set.Primary.Source, set.Primary.URL))
	}
	for i, sec := range set.Secondary {
		sb.WriteString(fmt.Sprintf("secondary %d [%s] %s\n", i+1, sec.Source, sec.URL))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
