// Package textnorm holds the deterministic text normalization used to turn
// site content into embeddable prose.
package textnorm

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
	whitespace = regexp.MustCompile(`\s+`)
	newlines   = regexp.MustCompile(`\n+`)

	markdownRules = []rewrite{
		{regexp.MustCompile(`#{1,6}\s`), ""},
		{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
		{regexp.MustCompile(`\*(.*?)\*`), "$1"},
		{regexp.MustCompile(`\[(.*?)\]\(.*?\)`), "$1"},
	}

	// Order matters: wrappers are unwrapped before the generic command
	// and brace removal runs.
	latexRules = []rewrite{
		{regexp.MustCompile(`\\textbf\{([^}]+)\}`), "$1"},
		{regexp.MustCompile(`\\textit\{([^}]+)\}`), "$1"},
		{regexp.MustCompile(`\\href\{[^}]+\}\{([^}]+)\}`), "$1"},
		{regexp.MustCompile(`\\itemsep\s*-?\d+pt\s*\{\}`), ""},
		{regexp.MustCompile(`\\item\b\s*`), Bullet + " "},
		{regexp.MustCompile(`\\hfill`), " - "},
		{regexp.MustCompile(`\\\\`), " "},
		{regexp.MustCompile(`\$\$[\s\S]*?\$\$`), ""},
		{regexp.MustCompile(`\\([&%#_$])`), "$1"},
		{regexp.MustCompile(`\\begin\{[^}]+\}`), ""},
		{regexp.MustCompile(`\\end\{[^}]+\}`), ""},
		{regexp.MustCompile(`\\[a-zA-Z]+`), ""},
		{regexp.MustCompile(`[{}]`), ""},
	}
)

// Bullet replaces itemized-list markers in cleaned markup.
const Bullet = "•"

// KebabCase lower-cases s, collapses every run of characters outside
// [a-z0-9] into one hyphen and trims leading and trailing hyphens.
func KebabCase(s string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// CollapseWhitespace replaces every whitespace run with a single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// StripMarkdown drops heading markers, unwraps bold, italic and link
// syntax to their text and flattens the result onto one line.
func StripMarkdown(s string) string {
	for _, r := range markdownRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = newlines.ReplaceAllString(s, " ")
	return CollapseWhitespace(s)
}

// CleanLatex reduces a LaTeX fragment to plain text. Emphasis and links keep
// their visible text, \item becomes a bullet, escaped specials such as \&
// are unescaped, line breaks and math blocks are dropped and all remaining
// commands and braces are removed.
func CleanLatex(s string) string {
	for _, r := range latexRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return CollapseWhitespace(s)
}

// JoinNonEmpty joins the non-blank parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
