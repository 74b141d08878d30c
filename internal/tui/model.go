// Package tui is the terminal shell for the video library.
//
// It shows the folder tree on the left and one derived page of videos on the
// right. Typing in the search box runs a backend search once input has been
// quiet for the debounce delay; responses that belong to a superseded folder
// or search are dropped.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/foldertree"
	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"github.com/dalemusser/ovaview/internal/app/system/searchguard"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"go.uber.org/zap"
)

// Source is the slice of the OVA client the shell uses.
type Source interface {
	ListFolders(ctx context.Context) ([]string, error)
	VideosInFolder(ctx context.Context, folder string) ([]models.Video, error)
	Search(ctx context.Context, in ovaclient.SearchRequest) ([]models.Video, error)
}

// Options configures a Model.
type Options struct {
	Source   Source
	Collator *collation.Collator
	PageSize int
	Debounce time.Duration       // <= 0 uses searchguard.DefaultDelay
	Policy   *searchguard.Policy // nil uses searchguard.DefaultPolicy
	Logger   *zap.Logger
}

// pane is the part of the screen that receives keys.
type pane int

const (
	paneFolders pane = iota
	paneVideos
	paneSearch
)

// Model is the bubbletea model of the terminal shell.
type Model struct {
	src    Source
	coll   *collation.Collator
	logger *zap.Logger
	deb    *searchguard.Debouncer
	seq    *searchguard.Sequencer

	folders   *foldertree.Static
	tree      *models.FolderNode
	rows      []foldertree.Row
	folder    string
	query     string // active backend search; "" lists the folder
	records   []models.Video
	state     videolist.State
	page      videolist.Page
	loading   bool
	notice    string
	folderCur int
	videoCur  int

	focus     pane
	lastFocus pane
	input     textinput.Model
	width     int
	height    int
}

// New returns a Model ready to be handed to tea.NewProgram.
func New(opts Options) Model {
	policy := searchguard.DefaultPolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	coll := opts.Collator
	if coll == nil {
		coll = collation.New("en")
	}

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search the library"
	in.CharLimit = 200

	m := Model{
		src:    opts.Source,
		coll:   coll,
		logger: logger,
		deb:    searchguard.NewDebouncer(opts.Debounce),
		seq:    searchguard.NewSequencer(policy),
		state:  videolist.DefaultState(opts.PageSize),
		input:  in,
	}
	m.folders = foldertree.NewStatic(coll)
	m.tree = m.folders.Tree()
	m.rows = foldertree.Flatten(m.tree, m.folder)
	m.page, m.state = videolist.Derive(nil, m.state, m.coll)
	return m
}

// Init loads the folder tree and the root folder's videos.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadFolders(), m.loadVideos(m.seq.Next(), m.folder, ""))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case foldersMsg:
		return m.applyFolders(msg), nil
	case debounceMsg:
		return m.fireSearch(msg)
	case videosMsg:
		return m.applyVideos(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == paneSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.focus == paneSearch {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		if m.focus == paneFolders {
			m.focus = paneVideos
		} else {
			m.focus = paneFolders
		}
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "enter":
		if m.focus == paneFolders && len(m.rows) > 0 {
			return m.openFolder(m.rows[m.folderCur].Path)
		}
	case "f":
		return m, m.loadFolders()
	case "/":
		m.lastFocus = m.focus
		m.focus = paneSearch
		return m, m.input.Focus()
	case "s":
		m.state.Sort = cycle(videolist.SortOptions, m.state.Sort)
		m.rederive(1)
	case "r":
		m.state.Resolution = cycle(videolist.ResolutionFilters, m.state.Resolution)
		m.rederive(1)
	case "d":
		m.state.Duration = cycle(videolist.DurationFilters, m.state.Duration)
		m.rederive(1)
	case "n":
		m.rederive(m.state.Page + 1)
	case "p":
		m.rederive(m.state.Page - 1)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.focus = m.lastFocus
		m.deb.Cancel()
		return m, nil
	case tea.KeyEnter:
		m.input.Blur()
		m.focus = paneVideos
		m.deb.Cancel()
		return m.search(strings.TrimSpace(m.input.Value()))
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounce(m.input.Value()))
}

// debounce schedules a search for term once the input has been quiet.
func (m Model) debounce(term string) tea.Cmd {
	gen := m.deb.Touch()
	return tea.Tick(m.deb.Delay(), func(time.Time) tea.Msg {
		return debounceMsg{gen: gen, term: term}
	})
}

func (m Model) fireSearch(msg debounceMsg) (tea.Model, tea.Cmd) {
	if !m.deb.Due(msg.gen) {
		return m, nil
	}
	return m.search(strings.TrimSpace(msg.term))
}

// search starts a backend search; an empty term goes back to the folder.
func (m Model) search(term string) (tea.Model, tea.Cmd) {
	if term == m.query && !m.loading {
		return m, nil
	}
	m.query = term
	m.loading = true
	m.state.Page = 1
	return m, m.loadVideos(m.seq.Next(), m.folder, term)
}

func (m Model) openFolder(path string) (tea.Model, tea.Cmd) {
	m.folder = path
	m.query = ""
	m.input.SetValue("")
	m.deb.Cancel()
	m.rows = foldertree.Flatten(m.tree, m.folder)
	m.loading = true
	m.state.Page = 1
	m.focus = paneVideos
	return m, m.loadVideos(m.seq.Next(), path, "")
}

func (m Model) applyFolders(msg foldersMsg) Model {
	if msg.err != nil {
		m.logger.Warn("folder list failed", zap.Error(msg.err))
		m.notice = noticeUnavailable
		return m
	}
	if !m.folders.SetPaths(msg.paths) {
		return m
	}
	m.tree = m.folders.Tree()
	if !foldertree.Contains(m.tree, m.folder) {
		m.folder = ""
	}
	m.rows = foldertree.Flatten(m.tree, m.folder)
	if m.folderCur >= len(m.rows) {
		m.folderCur = len(m.rows) - 1
	}
	return m
}

func (m Model) applyVideos(msg videosMsg) Model {
	if !m.seq.Accept(msg.ticket) {
		m.logger.Debug("dropping stale video response",
			zap.Uint64("ticket", msg.ticket),
			zap.Uint64("latest", m.seq.Latest()))
		return m
	}
	m.loading = false
	m.notice = ""
	m.records = msg.records
	if msg.err != nil {
		m.logger.Warn("video load failed", zap.Error(msg.err))
		m.notice = noticeUnavailable
		m.records = nil
	}
	m.rederive(m.state.Page)
	return m
}

// rederive runs the list pipeline over the loaded records. The backend has
// already matched any search term, so only filters, sort and paging apply.
func (m *Model) rederive(page int) {
	st := m.state
	st.SearchTerm = ""
	st.Page = page
	m.page, m.state = videolist.Derive(m.records, st, m.coll)
	m.state.SearchTerm = m.query
	if m.videoCur >= len(m.page.Items) {
		m.videoCur = max(len(m.page.Items)-1, 0)
	}
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case paneFolders:
		m.folderCur = clamp(m.folderCur+delta, len(m.rows))
	case paneVideos:
		m.videoCur = clamp(m.videoCur+delta, len(m.page.Items))
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// cycle returns the option after cur, wrapping around.
func cycle[T comparable](options []T, cur T) T {
	for i, o := range options {
		if o == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// Folder returns the selected folder path.
func (m Model) Folder() string { return m.folder }

// Query returns the active backend search term.
func (m Model) Query() string { return m.query }

// State returns the list state after the last derivation.
func (m Model) State() videolist.State { return m.state }

// Page returns the derived page on screen.
func (m Model) Page() videolist.Page { return m.page }

// Notice returns the message shown above the list, if any.
func (m Model) Notice() string { return m.notice }
