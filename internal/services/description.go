package services

import (
	"strings"
	"unicode/utf8"

	"github.com/thomas-vilte/prdelivery/internal/regex"
)

// DefaultDescriptionBudget is the number of characters kept from a body before the ellipsis.
const DefaultDescriptionBudget = 200

const ellipsis = "..."

var (
	problemTitles  = []string{"problem", "problema"}
	solutionTitles = []string{"solution", "solução", "solucao", "solución", "solucion"}
)

// Describe derives the short description of a pull request. A "problem" section
// wins over a "solution" section, and both win over the whole body. An empty
// body yields the title unchanged.
func Describe(title, body string, budget int) string {
	if strings.TrimSpace(body) == "" {
		return title
	}
	if budget <= 0 {
		budget = DefaultDescriptionBudget
	}

	text := ""
	for _, titles := range [][]string{problemTitles, solutionTitles} {
		if section := StripMarkdown(extractSection(body, titles)); section != "" {
			text = section
			break
		}
	}
	if text == "" {
		text = StripMarkdown(body)
	}
	if text == "" {
		return title
	}

	return truncate(text, budget)
}

// StripMarkdown removes markdown and HTML syntax and collapses the result to one line.
func StripMarkdown(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = regex.HTMLComment.ReplaceAllString(s, " ")
	s = regex.MarkdownCodeBlock.ReplaceAllString(s, " ")
	s = regex.MarkdownImage.ReplaceAllString(s, " ")
	s = regex.MarkdownLink.ReplaceAllString(s, "$1")
	s = regex.MarkdownInlineCode.ReplaceAllString(s, "$1")
	s = regex.MarkdownRule.ReplaceAllString(s, " ")
	s = regex.MarkdownHeading.ReplaceAllString(s, "")
	s = regex.MarkdownQuote.ReplaceAllString(s, "")
	s = regex.MarkdownList.ReplaceAllString(s, "")
	s = regex.MarkdownCheckbox.ReplaceAllString(s, "")
	s = regex.MarkdownBold.ReplaceAllString(s, "$2")
	s = regex.MarkdownStrike.ReplaceAllString(s, "$1")
	s = regex.MarkdownItalic.ReplaceAllString(s, "$1")
	s = regex.HTMLTag.ReplaceAllString(s, " ")
	s = regex.Whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func extractSection(body string, titles []string) string {
	var (
		collected []string
		inside    bool
	)
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if heading, ok := sectionTitle(line); ok {
			if inside {
				break
			}
			inside = matchesAny(heading, titles)
			continue
		}
		if inside {
			collected = append(collected, line)
		}
	}
	return strings.Join(collected, "\n")
}

func sectionTitle(line string) (string, bool) {
	if m := regex.SectionHeading.FindStringSubmatch(line); m != nil {
		return strings.ToLower(strings.TrimSuffix(m[1], ":")), true
	}
	if m := regex.SectionBold.FindStringSubmatch(line); m != nil {
		return strings.ToLower(strings.TrimSuffix(m[1], ":")), true
	}
	return "", false
}

func matchesAny(heading string, titles []string) bool {
	for _, t := range titles {
		if strings.Contains(heading, t) {
			return true
		}
	}
	return false
}

// truncate cuts s near budget runes, preferring the end of a sentence and then a
// word boundary in the second half of the window. The result never exceeds budget+3 runes.
func truncate(s string, budget int) string {
	if utf8.RuneCountInString(s) <= budget {
		return s
	}
	runes := []rune(s)
	window := string(runes[:budget])

	cut := -1
	for _, sep := range []string{". ", "! ", "? "} {
		if i := strings.LastIndex(window, sep); i > cut {
			cut = i + 1
		}
	}
	if cut < len(window)/2 {
		cut = -1
		if i := strings.LastIndex(window, " "); i >= len(window)/2 {
			cut = i
		}
	}
	if cut > 0 {
		window = window[:cut]
	}

	window = strings.TrimRight(window, " .,;:!?-")
	return window + ellipsis
}
