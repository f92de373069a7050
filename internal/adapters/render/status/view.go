package status

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

func composeBoard(summary fleetSummary, cards []string, s styles) string {
	lines := []string{
		s.title.Render("MemeFi Sessions"),
		s.header.Render(headerLine(summary)),
	}

	if len(cards) == 0 {
		lines = append(lines, s.empty.Render("No session snapshots recorded yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, card := range cards {
		lines = append(lines, s.section.Render(card))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(summary fleetSummary) string {
	line := fmt.Sprintf("sessions: %d  total balance: %s", summary.sessions, formatCoins(summary.balance))
	if summary.turbo > 0 {
		line += fmt.Sprintf("  turbo: %d", summary.turbo)
	}
	if summary.stale > 0 {
		line += fmt.Sprintf("  stale: %d", summary.stale)
	}
	if summary.failing > 0 {
		line += fmt.Sprintf("  failing: %d", summary.failing)
	}
	return line
}

func isStale(snapshot domain.SessionSnapshot, opts RenderOptions) bool {
	return !opts.Now.IsZero() && snapshot.IsStale(opts.Now, opts.StaleAfter)
}

func renderSession(snapshot domain.SessionSnapshot, opts RenderOptions, s styles) string {
	title := s.session.Render(sessionTitle(snapshot))
	if snapshot.TurboActive {
		title += " " + s.turbo.Render("[turbo]")
	}
	if isStale(snapshot, opts) {
		title += " " + s.warning.Render("[stale]")
	}

	parts := []string{
		title,
		s.detail.Render("balance: " + formatCoins(snapshot.Balance)),
		gaugeLine("energy:", snapshot.Energy, snapshot.MaxEnergy, s.barEnergy, s),
		gaugeLine(fmt.Sprintf("boss lv%d:", snapshot.BossLevel), snapshot.BossHealth, snapshot.BossMaxHealth, s.barBoss, s),
		s.meta.Render(passLine(snapshot, opts.Now)),
	}

	if snapshot.LastError != "" {
		parts = append(parts, s.warning.Render("last error: "+snapshot.LastError))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sessionTitle(snapshot domain.SessionSnapshot) string {
	if snapshot.Proxy == "" {
		return snapshot.SessionName
	}
	return fmt.Sprintf("%s (via %s)", snapshot.SessionName, snapshot.Proxy)
}

func gaugeLine(label string, current, capacity int64, fill lipgloss.Style, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render(label),
		" ",
		renderProgressBar(current, capacity, barWidth, fill, s),
		" ",
		s.detail.Render(fmt.Sprintf("%d/%d", current, capacity)),
	)
}

func renderProgressBar(current, capacity int64, width int, fill lipgloss.Style, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := 0
	if capacity > 0 {
		fraction := float64(current) / float64(capacity)
		filled = int(math.Round(float64(width) * fraction))
	}
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func passLine(snapshot domain.SessionSnapshot, now time.Time) string {
	noun := "passes"
	if snapshot.Passes == 1 {
		noun = "pass"
	}
	line := fmt.Sprintf("%d %s", snapshot.Passes, noun)

	if snapshot.LastPassAt.IsZero() {
		return line + ", never completed"
	}
	if now.IsZero() {
		return line + ", last at " + snapshot.LastPassAt.Format(time.RFC3339)
	}

	return line + ", last " + formatAgo(now.Sub(snapshot.LastPassAt))
}

func formatAgo(elapsed time.Duration) string {
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed/time.Minute), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed/time.Hour), "hour") + " ago"
	default:
		return plural(int(elapsed/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// formatCoins groups digits by thousands.
func formatCoins(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String()
}
