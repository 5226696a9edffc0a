package extract

import (
	"fmt"
	"strings"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/sources"
	"portfoliorag/internal/textnorm"
)

// Projects builds one "projects:<name>" chunk per project.
func (s *Set) Projects() ([]domain.ContentChunk, error) {
	var projects sources.Projects
	if err := sources.LoadJSON(s.paths.Projects, &projects); err != nil {
		return nil, err
	}
	chunks := make([]domain.ContentChunk, 0, len(projects.Projects))
	for _, p := range projects.Projects {
		chunks = append(chunks, projectChunk(p))
	}
	return chunks, nil
}

func projectChunk(p sources.Project) domain.ContentChunk {
	tags := strings.Join(p.Tags, ", ")
	top := p.Tags
	if len(top) > 3 {
		top = top[:3]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project name: %s. %s. ", p.Name, sentence(p.Description))
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Technologies used: %s. I built %s using %s. ", tags, p.Name, tags)
		fmt.Fprintf(&b, "This project demonstrates my expertise in %s.", strings.Join(top, ", "))
	}
	if len(p.Links) > 0 {
		links := make([]string, 0, len(p.Links))
		for _, l := range p.Links {
			links = append(links, l.Name+": "+l.Href)
		}
		fmt.Fprintf(&b, " Links: %s", strings.Join(links, " | "))
	}

	return domain.ContentChunk{
		Slug:     "projects:" + textnorm.KebabCase(p.Name),
		Title:    "Project: " + p.Name,
		Content:  textnorm.CollapseWhitespace(b.String()),
		Metadata: &domain.Metadata{ContentType: domain.ContentProject, Enrichment: append([]string(nil), p.Tags...)},
	}
}

// Career builds one "career:<company>-<title>" chunk per job. The title is
// part of the slug so two roles at one company stay distinct.
func (s *Set) Career() ([]domain.ContentChunk, error) {
	var career sources.Career
	if err := sources.LoadJSON(s.paths.Career, &career); err != nil {
		return nil, err
	}
	chunks := make([]domain.ContentChunk, 0, len(career.Career))
	for _, job := range career.Career {
		chunks = append(chunks, careerChunk(job))
	}
	return chunks, nil
}

// CareerSlug is the slug the career extractor gives a job.
func CareerSlug(company, title string) string {
	return "career:" + textnorm.KebabCase(company) + "-" + textnorm.KebabCase(title)
}

func careerChunk(job sources.Job) domain.ContentChunk {
	end := job.End
	if end == "" {
		end = "present"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I worked at %s as a %s from %s to %s. ", job.Name, job.Title, job.Start, end)
	if desc := sentence(strings.Join(job.Description, " ")); desc != "" {
		fmt.Fprintf(&b, "%s. ", desc)
	}
	fmt.Fprintf(&b, "My role at %s was %s. ", job.Name, job.Title)
	b.WriteString("This experience contributed to my professional growth as a software engineer.")

	return domain.ContentChunk{
		Slug:     CareerSlug(job.Name, job.Title),
		Title:    fmt.Sprintf("Career: %s - %s", job.Name, job.Title),
		Content:  textnorm.CollapseWhitespace(b.String()),
		Metadata: &domain.Metadata{ContentType: domain.ContentCareer, Enrichment: []string{job.Name, job.Title}},
	}
}

// RecencyOrder lists the career slugs newest role first, in the order the
// career file declares them.
func RecencyOrder(career sources.Career) []string {
	order := make([]string, 0, len(career.Career))
	for _, job := range career.Career {
		order = append(order, CareerSlug(job.Name, job.Title))
	}
	return order
}
