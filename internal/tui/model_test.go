package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/service"
)

type stubPort struct {
	res  service.Result
	err  error
	topK int
}

func (s *stubPort) Query(_ context.Context, _ string, topK int) (service.Result, error) {
	s.topK = topK
	return s.res, s.err
}

func scored(slug, title, content string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{ContentChunk: domain.ContentChunk{Slug: slug, Title: title, Content: content}, Score: score}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestView_BeforeSize(t *testing.T) {
	m := New(&stubPort{}, 3, "11 chunks")
	assert.Equal(t, "Loading...", m.View())
	m = sized(t, m)
	assert.Contains(t, m.View(), "Portfolio Context Explorer")
	assert.Contains(t, m.View(), "11 chunks")
}

func TestEnterRunsQuery(t *testing.T) {
	port := &stubPort{res: service.Result{Results: []domain.ScoredChunk{
		scored("career:acme-dev", "Career: Acme - Dev", "Built billing. Led the React migration.", 0.9),
		scored("/", "Homepage", "Hello there.", 0.4),
	}}}
	m := sized(t, New(port, 2, ""))
	m.input.SetValue("react migration")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.Equal(t, "Searching...", m.status)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, 2, port.topK)
	require.Len(t, m.results, 2)
	assert.Contains(t, m.status, `2 results for "react migration"`)
	assert.Contains(t, m.renderCurrentResult(), "Result 1/2")
	assert.Contains(t, m.renderCurrentResult(), "Career: Acme - Dev")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	m := sized(t, New(&stubPort{}, 3, ""))
	m.input.SetValue("   ")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Ready. Type a question.", next.(Model).status)
}

func TestQueryError(t *testing.T) {
	m := sized(t, New(&stubPort{}, 3, ""))
	next, _ := m.Update(resultMsg{query: "x", err: errors.New("corpus missing")})
	m = next.(Model)
	assert.Equal(t, "Error: corpus missing", m.status)
	assert.Empty(t, m.results)
	assert.Equal(t, "No results yet.", m.renderCurrentResult())
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc} {
		_, cmd := New(&stubPort{}, 3, "").Update(tea.KeyMsg{Type: k})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestHighlightBestSentence(t *testing.T) {
	text := "I like Go. I shipped a React migration at Acme."
	out := highlightBestSentence(text, "react", "")
	assert.Contains(t, out, "I like Go.")
	assert.Contains(t, out, "React migration")

	assert.Equal(t, "", highlightBestSentence("", "react", ""))
	assert.Equal(t, "I like Go.", highlightBestSentence("I like Go.", "", ""))
	assert.Equal(t, "I like Go.", highlightBestSentence("I like Go.", "python", "Project: Site"))
}

func TestTermWeights_QueryOutranksTitle(t *testing.T) {
	w := termWeights("react Go", "Career: Acme - Go Engineer")
	assert.Equal(t, 2, w["go"])
	assert.Equal(t, 2, w["react"])
	assert.Equal(t, 1, w["acme"])
	assert.Zero(t, w["python"])
}

func TestSentenceScore(t *testing.T) {
	w := termWeights("react", "Career: Acme - Engineer")
	assert.Equal(t, 2, sentenceScore(w, "react react typescript"))
	assert.Equal(t, 3, sentenceScore(w, "Led the React rewrite at Acme"))
	assert.Equal(t, 0, sentenceScore(w, "python"))
}

func TestBestSentence_TitleBreaksTies(t *testing.T) {
	sentences := []string{"Wrote React at a startup.", "Moved React to Acme."}
	assert.Equal(t, 1, bestSentence(sentences, termWeights("react", "Career: Acme - Engineer")))
	assert.Equal(t, 0, bestSentence(sentences, termWeights("react", "")))
	assert.Equal(t, -1, bestSentence(sentences, termWeights("python", "Project: Site")))
}
