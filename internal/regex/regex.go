package regex

import "regexp"

var (
	// Markdown cleanup for pull request descriptions
	MarkdownCodeBlock  = regexp.MustCompile("(?s)```.*?```")
	MarkdownInlineCode = regexp.MustCompile("`([^`]*)`")
	MarkdownImage      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	MarkdownLink       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	MarkdownHeading    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}[ \t]*`)
	MarkdownRule       = regexp.MustCompile(`(?m)^[ \t]*(?:[-*_][ \t]*){3,}$`)
	MarkdownList       = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+[.)])[ \t]+`)
	MarkdownCheckbox   = regexp.MustCompile(`\[[ xX]\][ \t]*`)
	MarkdownQuote      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	MarkdownBold       = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	MarkdownItalic     = regexp.MustCompile(`\*([^*\s][^*]*)\*`)
	MarkdownStrike     = regexp.MustCompile(`~~(.+?)~~`)
	HTMLComment        = regexp.MustCompile(`(?s)<!--.*?-->`)
	HTMLTag            = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	Whitespace         = regexp.MustCompile(`\s+`)

	// Section titles inside a description body
	SectionHeading = regexp.MustCompile(`^\s{0,3}#{1,6}\s*(.+?)\s*#*\s*$`)
	SectionBold    = regexp.MustCompile(`^\s*\*\*(.+?)\*\*:?\s*$`)

	// Text report lines
	ReportAuthorMarker = regexp.MustCompile(`^Buscando PRs de (.+?)\.\.\.$`)
	ReportPRCount      = regexp.MustCompile(`^PRs \((\d+) encontrados`)
	ReportPRLine       = regexp.MustCompile(`^  • (.*?) — (\S+) — merged: (\d{4}-\d{2}-\d{2}|N/A) — (.*)$`)
	ReportTruncation   = regexp.MustCompile(`^Observação: a busca retornou (\d+) resultados no total, a API trouxe (\d+); os resultados estão incompletos\. Ver todos no GitHub: (\S+)$`)
	ReportTotal        = regexp.MustCompile(`^Total: (\d+) PRs de (\d+) autores$`)
	ReportBullet       = regexp.MustCompile(`^  • (.*)$`)
	ReportDetailHeader = regexp.MustCompile(`^PR #(\d+):[ \t]*(.*)$`)
	ReportDetailLink   = regexp.MustCompile(`^  Link: (\S+)$`)
	ReportDetailBranch = regexp.MustCompile(`^  Branch: (.*)$`)
	ReportDetailCommit = regexp.MustCompile(`^    - (.*)$`)

	// Repository and URL patterns
	RepositoryName = regexp.MustCompile(`^[\w.-]+(?:/[\w.-]+)+$`)
	PRNumberInURL  = regexp.MustCompile(`/(\d+)/?$`)

	// Configuration
	EnvVarReference = regexp.MustCompile(`\$\{([^}]+)\}`)
)
