package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	// Title bar
	sections = append(sections, m.renderTitleBar())

	// Error display
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	// Model health
	if m.health != nil {
		sections = append(sections, m.renderHealth())
	}

	// Resource usage
	if m.status != nil {
		sections = append(sections, m.renderResources())
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("IRISD DASHBOARD")

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	if m.loading {
		refreshInfo = "↻ loading..."
	}

	help := helpStyle.Render("q:quit r:refresh")

	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderHealth() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Model"))

	if m.health.ModelLoaded {
		lines = append(lines, fmt.Sprintf("  %s %s",
			labelStyle.Render("Status:"),
			healthyStyle.Render("ok")))
		lines = append(lines, fmt.Sprintf("  %s %s",
			labelStyle.Render("Shape: "),
			valueStyle.Render(fmt.Sprintf("%d features → %d classes",
				m.health.FeatureCount, m.health.ClassCount))))
		if m.health.ModelLoadedAt != nil {
			lines = append(lines, fmt.Sprintf("  %s %s",
				labelStyle.Render("Loaded:"),
				valueStyle.Render(m.health.ModelLoadedAt.Format("2006-01-02 15:04:05"))))
		}
	} else {
		lines = append(lines, fmt.Sprintf("  %s %s",
			labelStyle.Render("Status:"),
			degradedStyle.Render("degraded (no model)")))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderResources() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Resources"))

	cpuBar := m.renderProgressBar("CPU", m.status.CPU.UsagePercent, 20)
	memBar := m.renderProgressBar("Memory", m.status.Memory.UsagePercent, 20)
	lines = append(lines, fmt.Sprintf("  %s    %s", cpuBar, memBar))

	rssMB := float64(m.status.Process.RSSBytes) / 1024 / 1024
	procInfo := fmt.Sprintf("pid %d  rss %.1f MB  goroutines %d  uptime %s",
		m.status.Process.PID,
		rssMB,
		m.status.Process.NumGoroutines,
		formatUptime(m.status.UptimeSeconds))
	lines = append(lines, fmt.Sprintf("  %s %s",
		labelStyle.Render("Process:"),
		valueStyle.Render(procInfo)))

	return strings.Join(lines, "\n")
}

func (m Model) renderProgressBar(label string, percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	color := getProgressColor(percent)
	filledBar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyBar := progressBarEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s [%s%s] %5.1f%%", labelStyle.Render(label), filledBar, emptyBar, percent)
}

func (m Model) renderFooter() string {
	if m.lastUpdated.IsZero() {
		return helpStyle.Render("  waiting for first update...")
	}
	return helpStyle.Render(fmt.Sprintf("  last updated %s", m.lastUpdated.Format("15:04:05")))
}

func formatUptime(seconds float64) string {
	s := int(seconds)
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	if s < 3600 {
		return fmt.Sprintf("%dm%ds", s/60, s%60)
	}
	return fmt.Sprintf("%dh%dm", s/3600, (s%3600)/60)
}
