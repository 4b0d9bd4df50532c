package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mindmap/internal/models"
)

var (
	_ list.Item = cdItem{}
	_ list.Item = trackItem{}
)

// cdItem wraps a saved [models.Playlist] to implement [list.Item].
type cdItem struct {
	cd *models.Playlist
}

func (i cdItem) FilterValue() string { return i.cd.Name }
func (i cdItem) Title() string       { return i.cd.Name }
func (i cdItem) Description() string {
	return fmt.Sprintf("%d tracks • %s", len(i.cd.Tracks), i.cd.CreatedAt.Format("2006-01-02"))
}

// trackItem wraps [models.PlaylistTrack] to implement [list.Item].
type trackItem struct {
	track models.PlaylistTrack
}

func (i trackItem) FilterValue() string { return i.track.TrackID }
func (i trackItem) Title() string       { return fmt.Sprintf("%02d. %s", i.track.Position+1, i.track.TrackID) }
func (i trackItem) Description() string { return models.TrackURI(i.track.TrackID) }
