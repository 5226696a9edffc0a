package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"portfoliorag/internal/domain"
	"portfoliorag/internal/service"
)

// QueryPort is the TUI-facing subset of the context service.
type QueryPort interface {
	Query(ctx context.Context, text string, topK int) (service.Result, error)
}

const queryTimeout = 30 * time.Second

// Model is the Bubble Tea model for the retrieval explorer.
type Model struct {
	service   QueryPort
	topK      int
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.ScoredChunk
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new explorer. summary is shown under the header.
func New(service QueryPort, topK int, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask what a visitor would ask and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, topK: topK, input: ti, viewport: vp, summary: summary, status: "Ready. Type a question."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

type resultMsg struct {
	query string
	res   service.Result
	err   error
}

func (m Model) runQuery(q string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		res, err := m.service.Query(ctx, q, m.topK)
		return resultMsg{query: q, res: res, err: err}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case resultMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else {
			m.status = fmt.Sprintf("%d results for %q", len(msg.res.Results), msg.query)
			m.results = msg.res.Results
			m.cursor = 0
			m.lastQuery = msg.query
		}
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m.status = "Searching..."
				return m, m.runQuery(q)
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Portfolio Context Explorer")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  score=%.3f  %s", m.cursor+1, len(m.results), r.Score, slugStyle.Render(r.Slug))
	body := highlightBestSentence(r.Content, m.lastQuery, r.Title)
	return title + "\n" + lipgloss.NewStyle().Bold(true).Render(r.Title) + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	slugStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence that best matches query.
// Query words count double; words from the chunk title break ties, so a
// career chunk favours the sentence naming its company. Nothing is
// highlighted when no sentence shares a word with either.
func highlightBestSentence(text, query, title string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	if best := bestSentence(sentences, termWeights(query, title)); best >= 0 {
		sentences[best] = highlightStyle.Render(sentences[best])
	}
	return strings.Join(sentences, " ")
}

// bestSentence is the index of the highest scoring sentence, the earliest
// on ties, or -1 when every sentence scores zero.
func bestSentence(sentences []string, weights map[string]int) int {
	best, bestScore := -1, 0
	for i, sent := range sentences {
		if score := sentenceScore(weights, sent); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func words(s string) []string {
	return unicodeWordRe.FindAllString(strings.ToLower(s), -1)
}

// termWeights scores query words 2 and title-only words 1.
func termWeights(query, title string) map[string]int {
	w := make(map[string]int)
	for _, t := range words(title) {
		w[t] = 1
	}
	for _, t := range words(query) {
		w[t] = 2
	}
	return w
}

// sentenceScore sums the weight of each distinct word in sentence.
func sentenceScore(weights map[string]int, sentence string) int {
	score := 0
	seen := make(map[string]bool)
	for _, t := range words(sentence) {
		if !seen[t] {
			seen[t] = true
			score += weights[t]
		}
	}
	return score
}
