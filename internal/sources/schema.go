// Package sources defines the schemas of the site's structured content files
// and loads them with validation.
package sources

import (
	"fmt"
	"strings"

	"portfoliorag/internal/domain"
)

// Validator is implemented by every source record.
type Validator interface {
	Validate() error
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidSource, field)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Home is src/data/home.json.
type Home struct {
	Introduction struct {
		Greeting    string `json:"greeting"`
		Description string `json:"description"`
		ChatPrompt  string `json:"chatPrompt"`
		Escalation  struct {
			Text     string `json:"text"`
			LinkText string `json:"linkText"`
			Suffix   string `json:"suffix"`
		} `json:"escalation"`
	} `json:"introduction"`
	EscalationLink struct {
		Href string `json:"href"`
	} `json:"escalationLink"`
}

func (h *Home) Validate() error {
	return firstErr(
		required("introduction.greeting", h.Introduction.Greeting),
		required("introduction.description", h.Introduction.Description),
	)
}

// Link is a named URL.
type Link struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

func (l Link) validate(where string) error {
	return firstErr(required(where+".name", l.Name), required(where+".href", l.Href))
}

// Project is one entry of src/data/projects.json.
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Links       []Link   `json:"links,omitempty"`
}

// Projects is src/data/projects.json.
type Projects struct {
	Projects []Project `json:"projects"`
}

func (p *Projects) Validate() error {
	for i, proj := range p.Projects {
		where := fmt.Sprintf("projects[%d]", i)
		if err := required(where+".name", proj.Name); err != nil {
			return err
		}
		if err := required(where+".description", proj.Description); err != nil {
			return err
		}
		for j, l := range proj.Links {
			if err := l.validate(fmt.Sprintf("%s.links[%d]", where, j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Job is one entry of src/data/career.json.
type Job struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description []string `json:"description"`
}

// Career is src/data/career.json, newest role first.
type Career struct {
	Career []Job `json:"career"`
}

func (c *Career) Validate() error {
	for i, job := range c.Career {
		where := fmt.Sprintf("career[%d]", i)
		if err := firstErr(
			required(where+".name", job.Name),
			required(where+".title", job.Title),
			required(where+".start", job.Start),
		); err != nil {
			return err
		}
	}
	return nil
}

// Socials is src/data/socials.json.
type Socials struct {
	Socials []Link `json:"socials"`
}

func (s *Socials) Validate() error {
	for i, l := range s.Socials {
		if err := l.validate(fmt.Sprintf("socials[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// Route is one page or external link of the site map.
type Route struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Routes is src/data/routes.json.
type Routes struct {
	Routes        []Route `json:"routes"`
	ExternalLinks []Route `json:"externalLinks,omitempty"`
}

func (r *Routes) Validate() error {
	for i, route := range append(append([]Route{}, r.Routes...), r.ExternalLinks...) {
		where := fmt.Sprintf("routes[%d]", i)
		if err := firstErr(required(where+".path", route.Path), required(where+".name", route.Name)); err != nil {
			return err
		}
	}
	return nil
}
