package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/resume"
	"portfoliorag/internal/sources"
	"portfoliorag/internal/textnorm"
)

// Resume builds the skills, per-entry experience and overview chunks from
// the optional LaTeX résumé.
func (s *Set) Resume() ([]domain.ContentChunk, error) {
	src, found, err := sources.ReadOptionalText(s.paths.Resume)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Info("resume file not found, skipping resume extraction", zap.String("path", s.paths.Resume))
		return nil, nil
	}
	return s.resumeChunks(resume.Parse(src)), nil
}

func (s *Set) resumeChunks(doc *resume.Document) []domain.ContentChunk {
	name := doc.Name
	if name == "" {
		name = s.owner.Name
	}

	var chunks []domain.ContentChunk
	if skills := doc.Skills(); skills != nil {
		chunks = append(chunks, skillsChunk(name, skills))
	}

	entries := doc.Experience()
	var orgs []string
	seenOrg := make(map[string]bool)
	for _, e := range entries {
		chunks = append(chunks, entryChunk(name, e))
		if key := e.OrganizationKey(); !seenOrg[key] {
			seenOrg[key] = true
			orgs = append(orgs, key)
		}
	}

	return append(chunks, s.overviewChunk(name, doc.Addresses, orgs))
}

var skillLabels = map[string]string{
	"Languages": "Programming Languages",
	"Frontend":  "Frontend technologies",
	"Backend":   "Backend technologies",
	"Tools":     "Tools and platforms",
}

func skillsChunk(name string, skills []resume.Skill) domain.ContentChunk {
	var b strings.Builder
	fmt.Fprintf(&b, "%s's technical skills from resume. ", name)
	var tags []string
	for _, sk := range skills {
		if sk.Value == "" {
			continue
		}
		label := skillLabels[sk.Category]
		if label == "" {
			label = sk.Category
		}
		fmt.Fprintf(&b, "%s: %s. ", label, sk.Value)
		tags = append(tags, sk.Category)
	}
	b.WriteString("These are the skills listed on my official resume.")

	return domain.ContentChunk{
		Slug:     "resume:skills",
		Title:    "Resume - Technical Skills",
		Content:  textnorm.CollapseWhitespace(b.String()),
		Metadata: &domain.Metadata{ContentType: domain.ContentPage, Enrichment: tags},
	}
}

func entryChunk(name string, e resume.Entry) domain.ContentChunk {
	var b strings.Builder
	fmt.Fprintf(&b, "%s worked as %s at %s in %s from %s. ", name, e.Title, e.Organization, e.Location, e.Dates)
	if bullets := sentence(strings.Join(e.Bullets, " ")); bullets != "" {
		fmt.Fprintf(&b, "Resume bullet points: %s. ", bullets)
	}
	b.WriteString("This is detailed work experience from my official resume.")

	org := e.OrganizationKey()
	if org == "" {
		org = e.Organization
	}
	return domain.ContentChunk{
		Slug:     "resume:" + textnorm.KebabCase(org) + "-" + textnorm.KebabCase(e.Title),
		Title:    fmt.Sprintf("Resume - %s Experience", e.Organization),
		Content:  textnorm.CollapseWhitespace(b.String()),
		Metadata: &domain.Metadata{ContentType: domain.ContentCareer, Enrichment: []string{e.Organization, e.Title}},
	}
}

func (s *Set) overviewChunk(name string, addresses, orgs []string) domain.ContentChunk {
	var b strings.Builder
	fmt.Fprintf(&b, "%s's resume overview. ", name)
	if contact := textnorm.CleanLatex(strings.Join(addresses, " | ")); contact != "" {
		fmt.Fprintf(&b, "Contact: %s. ", contact)
	}
	b.WriteString(s.owner.intro("I am"))
	if s.owner.ResumeURL != "" {
		fmt.Fprintf(&b, "My resume is available for download at %s. ", s.owner.ResumeURL)
	}
	if len(orgs) > 0 {
		fmt.Fprintf(&b, "The resume contains my technical skills and work experience at %s.", strings.Join(orgs, ", "))
	} else {
		b.WriteString("The resume contains my technical skills and work experience.")
	}

	return domain.ContentChunk{
		Slug:     "resume:overview",
		Title:    "Resume - Overview",
		Content:  textnorm.CollapseWhitespace(b.String()),
		Metadata: &domain.Metadata{ContentType: domain.ContentPage},
	}
}
