package models

import (
	"fmt"
	"strings"
	"time"
)

// TrackURIPrefix prefixes catalog ids to form track URIs accepted by the playlist endpoints.
const TrackURIPrefix = "spotify:track:"

// Track is a catalog entry returned by the streaming provider.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
	URL        string   `json:"url,omitempty"`
}

// Artist returns the primary (first credited) artist, or "" when none is credited.
func (t Track) Artist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ArtistLine joins every credited artist for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// URI returns the provider URI for the track.
func (t Track) URI() string {
	return TrackURI(t.ID)
}

// TrackURI builds a provider URI from a bare catalog id.
func TrackURI(id string) string {
	return TrackURIPrefix + id
}

// Candidate is an unresolved similar-track suggestion.
type Candidate struct {
	Artist string  `json:"artist"`
	Title  string  `json:"title"`
	Match  float64 `json:"match"`
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s - %s", c.Artist, c.Title)
}

// Video is a single video search hit.
type Video struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Channel string `json:"channel"`
}

// Recommendation is the result of one recommendation request.
type Recommendation struct {
	Seed   Track   `json:"seed"`
	Tracks []Track `json:"tracks"`
}

// User is the local record of a streaming provider account.
type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Playlist is a saved CD.
type Playlist struct {
	ID        int64     `json:"id"`
	RemoteID  string    `json:"remote_id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Tracks []PlaylistTrack `json:"tracks,omitempty"`
}

// TrackIDs returns the catalog ids of the playlist's tracks in insertion order.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.TrackID
	}
	return ids
}

// Validate checks the fields required before a playlist is written.
func (p *Playlist) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("playlist name is required")
	case p.RemoteID == "":
		return fmt.Errorf("remote playlist id is required")
	case p.UserID == "":
		return fmt.Errorf("playlist owner is required")
	}
	return nil
}

// PlaylistTrack binds one catalog track to a saved CD.
type PlaylistTrack struct {
	ID         int64  `json:"id"`
	TrackID    string `json:"track_id"`
	PlaylistID int64  `json:"playlist_id"`
	Position   int    `json:"position"`
}

// CD pairs a saved playlist with the catalog details of its tracks.
type CD struct {
	Playlist *Playlist
	Tracks   []Track
}
