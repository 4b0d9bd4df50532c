package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mindmap/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCDsFetched MsgKind = iota
	MsgOpened
)

type cdsFetched struct {
	cds []*models.Playlist
	err error
}

// cdsFetchedMsg is the constructor for [MsgCDsFetched]
func cdsFetchedMsg(cds []*models.Playlist, err error) Msg {
	return Msg{kind: MsgCDsFetched, data: cdsFetched{cds, err}}
}

type opened struct {
	url string
	err error
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(url string, err error) Msg {
	return Msg{kind: MsgOpened, data: opened{url, err}}
}
