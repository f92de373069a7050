package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// proxyCheckedMsg delivers the outcome for the proxy at index.
type proxyCheckedMsg struct {
	index  int
	result proxyCheckResult
}

// proxyCheckModel tracks checks as they land and quits once every proxy
// has reported.
type proxyCheckModel struct {
	spinner spinner.Model
	results []proxyCheckResult
	checked int
	failed  int
}

func newProxyCheckModel(total int) proxyCheckModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("208"))),
	)

	return proxyCheckModel{
		spinner: s,
		results: make([]proxyCheckResult, total),
	}
}

func (m proxyCheckModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m proxyCheckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case proxyCheckedMsg:
		m.results[msg.index] = msg.result
		m.checked++
		if msg.result.err != nil {
			m.failed++
		}
		if m.finished() {
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m proxyCheckModel) finished() bool {
	return m.checked >= len(m.results)
}

func (m proxyCheckModel) View() string {
	if m.finished() {
		return ""
	}

	line := fmt.Sprintf("%s Checking proxies %d/%d", m.spinner.View(), m.checked, len(m.results))
	if m.failed > 0 {
		line += fmt.Sprintf(" (%d failed)", m.failed)
	}
	return line
}

// runProxyChecks checks every proxy concurrently while output shows live
// progress. Results keep the order of proxies.
func runProxyChecks(ctx context.Context, output io.Writer, proxies []*url.URL, endpoint string) ([]proxyCheckResult, error) {
	p := tea.NewProgram(
		newProxyCheckModel(len(proxies)),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	go checkProxies(ctx, proxies, endpoint, func(index int, result proxyCheckResult) {
		p.Send(proxyCheckedMsg{index: index, result: result})
	})

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result, ok := finalModel.(proxyCheckModel)
	if !ok {
		return nil, fmt.Errorf("unexpected final proxy check model type %T", finalModel)
	}

	return result.results, nil
}
