package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mindmap/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CDListView ViewState = iota
	TrackListView
)

const (
	spotifyPlaylistURL = "https://open.spotify.com/playlist/"
	spotifyTrackURL    = "https://open.spotify.com/track/"
)

// CDLister lists a user's saved CDs, implemented by repositories.PlaylistRepository.
type CDLister interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Playlist, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	cds       CDLister
	userID    string
	open      func(string) error
	width     int
	height    int
	cdList    list.Model
	trackList list.Model
	selected  *models.Playlist
	status    string
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a TUI browsing userID's CDs. open launches URLs, normally [shared.OpenBrowser].
func NewModel(ctx context.Context, cds CDLister, userID string, open func(string) error) *Model {
	return &Model{
		ctx:       ctx,
		view:      CDListView,
		cds:       cds,
		userID:    userID,
		open:      open,
		cdList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		trackList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init loads the CDs.
func (m *Model) Init() tea.Cmd {
	return m.fetchCDs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.cdList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case CDListView:
			return m.handleCDListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCDsFetched:
		data := msg.data.(cdsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(data.cds))
		for i, cd := range data.cds {
			items[i] = cdItem{cd: cd}
		}
		m.cdList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.cdList.Title = fmt.Sprintf("CDs for %s", m.userID)
		m.cdList.SetSize(m.width-4, m.height-8)
		m.view = CDListView
		return m, nil

	case MsgOpened:
		data := msg.data.(opened)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("could not open browser: %v", data.err))
		} else {
			m.status = styles.ok.Render("opened " + data.url)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}

	switch m.view {
	case CDListView:
		return m.renderCDList()
	case TrackListView:
		return m.renderTrackList()
	default:
		return ""
	}
}

func (m *Model) handleCDListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		return m, m.fetchCDs()
	case m.err != nil:
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.cdList.SelectedItem().(cdItem); ok {
			m.showTracks(item.cd)
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if item, ok := m.cdList.SelectedItem().(cdItem); ok {
			return m, m.openURL(spotifyPlaylistURL + item.cd.RemoteID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.cdList, cmd = m.cdList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = CDListView
		m.selected = nil
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.open):
		if item, ok := m.trackList.SelectedItem().(trackItem); ok {
			return m, m.openURL(spotifyTrackURL + item.track.TrackID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) showTracks(cd *models.Playlist) {
	items := make([]list.Item, len(cd.Tracks))
	for i, t := range cd.Tracks {
		items[i] = trackItem{track: t}
	}
	m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("Tracks in '%s'", cd.Name)
	m.trackList.SetSize(m.width-4, m.height-8)
	m.selected = cd
	m.status = ""
	m.view = TrackListView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case CDListView:
		m.cdList, cmd = m.cdList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchCDs() tea.Cmd {
	return func() tea.Msg {
		cds, err := m.cds.ListByUser(m.ctx, m.userID)
		return cdsFetchedMsg(cds, err)
	}
}

func (m *Model) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg(url, m.open(url))
	}
}

func (m *Model) renderCDList() string {
	if len(m.cdList.Items()) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s",
			styles.title.Render(fmt.Sprintf("CDs for %s", m.userID)),
			styles.warn.Render("No CDs yet. Burn one from the web app."),
			styles.help.Render("r reload • q quit"),
		)
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.open, m.keys.reload, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", m.cdList.View(), m.status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.open, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", m.trackList.View(), m.status, m.help.ShortHelpView(helpKeys))
}
