// Package resume parses the semi-structured LaTeX résumé the site publishes.
//
// Only the subset of the document that carries facts is recognised:
//
//	document := { header | section | other }
//	header   := `\name{` NAME `}` | `\address{` ADDRESS `}`
//	section  := `\begin{rSection}{` LABEL `}` BODY `\end{rSection}`
//	entry    := `\textbf{` TITLE `}` `\hfill` DATES `\\`
//	            ORGANIZATION `\hfill` `\textit{` LOCATION `}`
//	            `\begin{itemize}` { `\item` TEXT } `\end{itemize}`
//	skillrow := CATEGORY `}` `&` VALUE ( `\\` | end )
//
// Experience sections are sequences of entries; the skills section is a
// tabular of skill rows. Anything the grammar does not match is ignored, and
// an absent section simply produces nothing.
package resume

import (
	"regexp"
	"strings"

	"portfoliorag/internal/textnorm"
)

const (
	sectionOpen  = `\begin{rSection}{`
	sectionClose = `\end{rSection}`

	SectionSkills     = "SKILLS"
	SectionExperience = "EXPERIENCE"
)

// SkillCategories are the tabular rows read from the skills section.
var SkillCategories = []string{"Languages", "Frontend", "Backend", "Tools"}

var (
	nameRe    = regexp.MustCompile(`\\name\{([^}]+)\}`)
	addressRe = regexp.MustCompile(`\\address\{([^}]+)\}`)
	// plain text run that may contain escaped specials like \&
	textRun = `((?:[^\\]|\\[&%#_$])+)`
	entryRe = regexp.MustCompile(
		`\\textbf\{([^}]+)\}\s*\\hfill\s*` + textRun + `\\\\\s*` +
			textRun + `\\hfill\s*\\textit\{([^}]+)\}\s*` +
			`\\begin\{itemize\}([\s\S]*?)\\end\{itemize\}`)
	itemSplit = regexp.MustCompile(`\\item\b`)
	skillRes  = skillPatterns()
)

func skillPatterns() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(SkillCategories))
	for _, cat := range SkillCategories {
		res[cat] = regexp.MustCompile(regexp.QuoteMeta(cat) + `\}\s*&\s*([^\\]+)`)
	}
	return res
}

// Document is the parsed résumé.
type Document struct {
	Name      string
	Addresses []string
	sections  map[string]string
}

// Entry is one job in an experience section.
type Entry struct {
	Title        string
	Dates        string
	Organization string
	Location     string
	Bullets      []string
}

// Skill is one row of the skills tabular.
type Skill struct {
	Category string
	Value    string
}

// Parse scans src for the header fields and every rSection.
func Parse(src string) *Document {
	doc := &Document{sections: make(map[string]string)}
	if m := nameRe.FindStringSubmatch(src); m != nil {
		doc.Name = strings.TrimSpace(m[1])
	}
	for _, m := range addressRe.FindAllStringSubmatch(src, -1) {
		doc.Addresses = append(doc.Addresses, strings.TrimSpace(m[1]))
	}

	rest := src
	for {
		start := strings.Index(rest, sectionOpen)
		if start < 0 {
			break
		}
		rest = rest[start+len(sectionOpen):]
		labelEnd := strings.IndexByte(rest, '}')
		if labelEnd < 0 {
			break
		}
		label := strings.TrimSpace(rest[:labelEnd])
		rest = rest[labelEnd+1:]
		end := strings.Index(rest, sectionClose)
		if end < 0 {
			break
		}
		// first occurrence wins, like a non-greedy scan
		if _, seen := doc.sections[label]; !seen {
			doc.sections[label] = rest[:end]
		}
		rest = rest[end+len(sectionClose):]
	}
	return doc
}

// Section returns the raw body of the section with the given label.
func (d *Document) Section(label string) (string, bool) {
	body, ok := d.sections[label]
	return body, ok
}

// Experience returns the entries of the experience section, or nil when the
// document has none.
func (d *Document) Experience() []Entry {
	body, ok := d.Section(SectionExperience)
	if !ok {
		return nil
	}
	return ParseEntries(body)
}

// Skills returns the skills rows, or nil when the document has no skills
// section. Categories missing from the tabular come back with an empty value.
func (d *Document) Skills() []Skill {
	body, ok := d.Section(SectionSkills)
	if !ok {
		return nil
	}
	return ParseSkills(body)
}

// ParseEntries extracts every entry from an experience section body.
func ParseEntries(body string) []Entry {
	var entries []Entry
	for _, m := range entryRe.FindAllStringSubmatch(body, -1) {
		entries = append(entries, Entry{
			Title:        textnorm.CleanLatex(m[1]),
			Dates:        textnorm.CleanLatex(m[2]),
			Organization: textnorm.CleanLatex(m[3]),
			Location:     textnorm.CleanLatex(m[4]),
			Bullets:      parseItems(m[5]),
		})
	}
	return entries
}

func parseItems(raw string) []string {
	var items []string
	for _, part := range itemSplit.Split(raw, -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if item := textnorm.CleanLatex(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseSkills reads the known skill categories from a skills section body.
func ParseSkills(body string) []Skill {
	skills := make([]Skill, 0, len(SkillCategories))
	for _, cat := range SkillCategories {
		var value string
		if m := skillRes[cat].FindStringSubmatch(body); m != nil {
			value = textnorm.CleanLatex(m[1])
		}
		skills = append(skills, Skill{Category: cat, Value: value})
	}
	return skills
}

// OrganizationKey is the organization name without any parenthetical
// suffix, e.g. "Freelance (Contract)" -> "Freelance".
func (e Entry) OrganizationKey() string {
	if i := strings.IndexByte(e.Organization, '('); i >= 0 {
		return strings.TrimSpace(e.Organization[:i])
	}
	return strings.TrimSpace(e.Organization)
}
