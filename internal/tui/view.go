package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/ovaview/internal/domain/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	focusedBorder = lipgloss.Color("39")
)

const (
	folderPaneWidth = 28
	helpLine        = "tab pane · j/k move · enter open · / search · f reload folders · s sort · r res · d dur · n/p page · q quit"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("OVA Video Library"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	folders := m.styledPane(paneFolders, folderPaneWidth).Render(m.folderPane())
	videoWidth := 60
	if m.width > folderPaneWidth+10 {
		videoWidth = m.width - folderPaneWidth - 8
	}
	videos := m.styledPane(paneVideos, videoWidth).Render(m.videoPane())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, folders, videos))
	b.WriteString("\n")

	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(helpLine))
	return b.String()
}

func (m Model) styledPane(p pane, width int) lipgloss.Style {
	s := paneStyle.Width(width)
	if m.focus == p {
		s = s.BorderForeground(focusedBorder)
	}
	return s
}

func (m Model) folderPane() string {
	lines := make([]string, 0, len(m.rows))
	for i, row := range m.rows {
		line := strings.Repeat("  ", row.Depth) + row.Name
		switch {
		case m.focus == paneFolders && i == m.folderCur:
			line = cursorStyle.Render(line)
		case row.Active:
			line = activeStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) videoPane() string {
	if m.loading {
		return dimStyle.Render("loading...")
	}
	if len(m.page.Items) == 0 {
		return dimStyle.Render("no videos")
	}
	lines := make([]string, 0, len(m.page.Items))
	for i, v := range m.page.Items {
		line := videoLine(v)
		if m.focus == paneVideos && i == m.videoCur {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func videoLine(v models.Video) string {
	return fmt.Sprintf("%-40s %8s %6s", truncate(v.Title, 40), formatDuration(v.DurationSeconds), tierLabel(v.Resolution.Height))
}

// statusLine summarizes the folder, the active filters and the page range.
func (m Model) statusLine() string {
	where := "/" + m.folder
	if m.query != "" {
		where = fmt.Sprintf("search %q", m.query)
	}
	parts := []string{
		where,
		"sort " + string(m.state.Sort),
		"res " + orAny(string(m.state.Resolution)),
		"dur " + orAny(string(m.state.Duration)),
		fmt.Sprintf("page %d/%d", m.page.Page, m.page.TotalPages),
	}
	if m.page.TotalCount > 0 {
		parts = append(parts, fmt.Sprintf("%d-%d of %d", m.page.RangeStart, m.page.RangeEnd, m.page.TotalCount))
	}
	return strings.Join(parts, " │ ")
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func tierLabel(height int) string {
	for _, r := range videolist.ResolutionFilters {
		if r != videolist.ResolutionAny && r.Matches(height) {
			return string(r)
		}
	}
	return ""
}

func formatDuration(seconds int) string {
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
