package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/domain/models"
)

const noticeUnavailable = listview.NoticeUnavailable

type foldersMsg struct {
	paths []string
	err   error
}

// videosMsg carries the sequencer ticket of the load that produced it.
type videosMsg struct {
	ticket  uint64
	records []models.Video
	err     error
}

type debounceMsg struct {
	gen  uint64
	term string
}

func (m Model) loadFolders() tea.Cmd {
	src, logger := m.src, m.logger
	return func() tea.Msg {
		ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Upstream(), logger, "tui.folders")
		defer cancel()
		paths, err := src.ListFolders(ctx)
		return foldersMsg{paths: paths, err: err}
	}
}

// loadVideos lists folder, or runs a backend search when term is set.
func (m Model) loadVideos(ticket uint64, folder, term string) tea.Cmd {
	src, logger := m.src, m.logger
	return func() tea.Msg {
		ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Upstream(), logger, "tui.videos")
		defer cancel()

		var (
			records []models.Video
			err     error
		)
		if term == "" {
			records, err = src.VideosInFolder(ctx, folder)
		} else {
			records, err = src.Search(ctx, ovaclient.SearchRequest{Query: term})
		}
		return videosMsg{ticket: ticket, records: records, err: err}
	}
}
