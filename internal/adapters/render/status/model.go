package status

import (
	"errors"
	"io"

	"github.com/bnema/memefi-tapper/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// cardMsg asks the model to render the session card at index. An index past
// the last snapshot finishes the board.
type cardMsg struct {
	index int
}

// fleetSummary aggregates the board header while cards are rendered.
type fleetSummary struct {
	sessions int
	balance  int64
	stale    int
	turbo    int
	failing  int
}

func (f *fleetSummary) add(snapshot domain.SessionSnapshot, opts RenderOptions) {
	f.sessions++
	f.balance += snapshot.Balance
	if snapshot.TurboActive {
		f.turbo++
	}
	if snapshot.LastError != "" {
		f.failing++
	}
	if isStale(snapshot, opts) {
		f.stale++
	}
}

type board struct {
	snapshots []domain.SessionSnapshot
	opts      RenderOptions
	styles    styles
	summary   fleetSummary
	cards     []string
	output    string
}

func newBoard(snapshots []domain.SessionSnapshot, opts RenderOptions) board {
	return board{
		snapshots: snapshots,
		opts:      opts,
		styles:    newStyles(),
		cards:     make([]string, 0, len(snapshots)),
	}
}

func nextCard(index int) tea.Cmd {
	return func() tea.Msg {
		return cardMsg{index: index}
	}
}

func (b board) Init() tea.Cmd {
	return nextCard(0)
}

func (b board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	card, ok := msg.(cardMsg)
	if !ok {
		return b, nil
	}

	if card.index >= len(b.snapshots) {
		b.output = composeBoard(b.summary, b.cards, b.styles)
		return b, tea.Quit
	}

	snapshot := b.snapshots[card.index]
	b.summary.add(snapshot, b.opts)
	b.cards = append(b.cards, renderSession(snapshot, b.opts, b.styles))
	return b, nextCard(card.index + 1)
}

func (b board) View() string {
	return b.output
}

func Render(snapshots []domain.SessionSnapshot, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newBoard(snapshots, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(board)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
