// Package extract turns the site's content sources into content chunks.
//
// The prose each extractor writes is deliberately redundant: names and
// technologies are restated so nearest-neighbour matching has more surface
// to overlap with a visitor's question.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"portfoliorag/internal/domain"
)

// Owner holds the facts about the site owner that the prose templates use.
type Owner struct {
	Name      string
	Location  string
	Headline  string
	ResumeURL string
}

// FirstName is the first word of the owner's name.
func (o Owner) FirstName() string {
	if f := strings.Fields(o.Name); len(f) > 0 {
		return f[0]
	}
	return o.Name
}

// intro is the owner's self-description sentence, e.g. "I'm a <headline>
// based in <location>. ". Blank facts are left out; with neither set it is
// empty.
func (o Owner) intro(subject string) string {
	headline, loc := strings.TrimSpace(o.Headline), strings.TrimSpace(o.Location)
	switch {
	case headline != "" && loc != "":
		return fmt.Sprintf("%s a %s based in %s. ", subject, headline, loc)
	case headline != "":
		return fmt.Sprintf("%s a %s. ", subject, headline)
	case loc != "":
		return fmt.Sprintf("%s based in %s. ", subject, loc)
	}
	return ""
}

// Paths locates each content source. Empty paths disable a source.
type Paths struct {
	Home     string
	Privacy  string
	Projects string
	Career   string
	Socials  string
	Routes   string
	Resume   string
}

// Resolve joins every relative path onto root.
func (p Paths) Resolve(root string) Paths {
	join := func(s string) string {
		if s == "" || filepath.IsAbs(s) {
			return s
		}
		return filepath.Join(root, s)
	}
	return Paths{
		Home:     join(p.Home),
		Privacy:  join(p.Privacy),
		Projects: join(p.Projects),
		Career:   join(p.Career),
		Socials:  join(p.Socials),
		Routes:   join(p.Routes),
		Resume:   join(p.Resume),
	}
}

type extractorFunc struct {
	name string
	fn   func() ([]domain.ContentChunk, error)
}

func (e extractorFunc) Name() string                            { return e.name }
func (e extractorFunc) Extract() ([]domain.ContentChunk, error) { return e.fn() }

// Set is the full extractor set for one site.
type Set struct {
	owner  Owner
	paths  Paths
	logger *zap.Logger
}

// NewSet creates an extractor set over the given sources.
func NewSet(owner Owner, paths Paths, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Set{owner: owner, paths: paths, logger: logger}
}

// Extractors returns the extractors in corpus order, skipping sources
// whose path is not configured.
func (s *Set) Extractors() []domain.Extractor {
	all := []struct {
		path string
		ex   extractorFunc
	}{
		{s.paths.Home, extractorFunc{"homepage", s.Homepage}},
		{s.paths.Privacy, extractorFunc{"privacy", s.Privacy}},
		{s.paths.Projects, extractorFunc{"projects", s.Projects}},
		{s.paths.Career, extractorFunc{"career", s.Career}},
		{s.paths.Socials, extractorFunc{"socials", s.Socials}},
		{s.paths.Routes, extractorFunc{"navigation", s.Navigation}},
		{s.paths.Resume, extractorFunc{"resume", s.Resume}},
	}
	out := make([]domain.Extractor, 0, len(all))
	for _, e := range all {
		if e.path != "" {
			out = append(out, e.ex)
		}
	}
	return out
}

// ExtractAll runs every extractor and concatenates their chunks, then checks
// the chunk invariants so a bad corpus fails before any embedding work.
func ExtractAll(extractors []domain.Extractor, logger *zap.Logger) ([]domain.ContentChunk, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var chunks []domain.ContentChunk
	for _, e := range extractors {
		got, err := e.Extract()
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", e.Name(), err)
		}
		logger.Debug("extracted content", zap.String("source", e.Name()), zap.Int("chunks", len(got)))
		chunks = append(chunks, got...)
	}
	if err := domain.CheckChunks(chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// sentence trims whitespace and a trailing full stop so templates can add
// their own punctuation.
func sentence(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ". ")
}
