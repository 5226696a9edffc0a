package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/sources"
	"portfoliorag/internal/textnorm"
)

// Homepage builds the "/" chunk from home.json.
func (s *Set) Homepage() ([]domain.ContentChunk, error) {
	var home sources.Home
	if err := sources.LoadJSON(s.paths.Home, &home); err != nil {
		return nil, err
	}
	intro := home.Introduction
	esc := intro.Escalation

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s. ", intro.Greeting, sentence(intro.Description))
	if intro.ChatPrompt != "" {
		fmt.Fprintf(&b, "%s. ", sentence(intro.ChatPrompt))
	}
	if esc.Text != "" || home.EscalationLink.Href != "" {
		fmt.Fprintf(&b, "%s %s (%s) %s. ", esc.Text, esc.LinkText, home.EscalationLink.Href, sentence(esc.Suffix))
	}
	b.WriteString(s.owner.intro("I'm"))
	b.WriteString("This is my portfolio homepage with introduction and welcome message. ")
	fmt.Fprintf(&b, "You can chat with %s AI for questions and answers. ", s.owner.FirstName())
	b.WriteString("For escalations, connect with me on LinkedIn.")

	return []domain.ContentChunk{{
		Slug:     "/",
		Title:    "Homepage - About " + s.owner.FirstName(),
		Content:  textnorm.CollapseWhitespace(b.String()),
		Metadata: &domain.Metadata{ContentType: domain.ContentPage},
	}}, nil
}

// Privacy builds the "/privacy" chunk from the optional privacy markdown.
func (s *Set) Privacy() ([]domain.ContentChunk, error) {
	text, found, err := sources.ReadOptionalText(s.paths.Privacy)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Info("privacy policy not found, skipping", zap.String("path", s.paths.Privacy))
		return nil, nil
	}
	content := textnorm.StripMarkdown(text)
	if content == "" {
		return nil, nil
	}
	return []domain.ContentChunk{{
		Slug:     "/privacy",
		Title:    "Privacy Policy",
		Content:  content,
		Metadata: &domain.Metadata{ContentType: domain.ContentPage},
	}}, nil
}

var socialDescriptions = map[string]string{
	"LinkedIn": " - Connect professionally and view my resume",
	"GitHub":   " - Explore my code repositories and projects",
	"Email":    " - Preferred communication, send me a direct email",
}

// Socials builds the single "socials:links" chunk.
func (s *Set) Socials() ([]domain.ContentChunk, error) {
	var socials sources.Socials
	if err := sources.LoadJSON(s.paths.Socials, &socials); err != nil {
		return nil, err
	}
	if len(socials.Socials) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(socials.Socials))
	names := make([]string, 0, len(socials.Socials))
	for _, l := range socials.Socials {
		parts = append(parts, l.Name+": "+l.Href+socialDescriptions[l.Name])
		names = append(names, l.Name)
	}
	content := fmt.Sprintf("You can contact %s through the following channels: %s. "+
		"Email is my preferred method for direct communication. "+
		"Connect with me professionally on LinkedIn. "+
		"My GitHub contains all my code repositories and projects.",
		s.owner.FirstName(), strings.Join(parts, " | "))

	return []domain.ContentChunk{{
		Slug:     "socials:links",
		Title:    "Contact Information and Social Links",
		Content:  content,
		Metadata: &domain.Metadata{ContentType: domain.ContentSocial, Enrichment: names},
	}}, nil
}

func describeRoutes(routes []sources.Route) string {
	parts := make([]string, 0, len(routes))
	for _, r := range routes {
		parts = append(parts, fmt.Sprintf("'%s' - %s: %s", r.Path, r.Name, r.Description))
	}
	return strings.Join(parts, " | ")
}

// Navigation builds the "navigation:routes" chunk from the optional site map.
func (s *Set) Navigation() ([]domain.ContentChunk, error) {
	var routes sources.Routes
	found, err := sources.LoadOptionalJSON(s.paths.Routes, &routes)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Info("routes file not found, skipping", zap.String("path", s.paths.Routes))
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This website has the following pages: %s. ", describeRoutes(routes.Routes))
	if len(routes.ExternalLinks) > 0 {
		fmt.Fprintf(&b, "External links: %s ", describeRoutes(routes.ExternalLinks))
	}
	b.WriteString("You can navigate to different sections like projects, blog, and contact.")

	paths := make([]string, 0, len(routes.Routes))
	for _, r := range routes.Routes {
		paths = append(paths, r.Path)
	}
	return []domain.ContentChunk{{
		Slug:     "navigation:routes",
		Title:    "Website Navigation",
		Content:  textnorm.CollapseWhitespace(b.String()),
		Metadata: &domain.Metadata{ContentType: domain.ContentNavigation, Enrichment: paths},
	}}, nil
}
