// Package ui implements a terminal browser for saved CDs using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [CDListView] : the user's CDs, newest first
//  2. [TrackListView] : the tracks of the selected CD in burn order
//
// CDs are read from the local store only, so the TUI needs no provider credentials.
// Pressing o (or enter on a track) opens the playlist or track in the browser.
//
// The [Model] implements Init/Update/View, receiving results of its commands through the [Msg] union type.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with help rendered by charmbracelet/bubbles/help.
package ui
