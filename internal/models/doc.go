// Package models defines the domain types shared by the mindmap services, tasks and store.
//
// The package contains two categories of types:
//
// 1. Provider values: transient data returned by the music services
//   - [Track] : a catalog track resolved on the streaming provider
//   - [Candidate] : an (artist, title) pair from the similarity provider
//   - [Video] : a video search hit
//   - [Recommendation] : a seed track with its assembled recommendations
//
// 2. Persistent entities: rows in the local SQLite store
//   - [User] : keyed by the streaming provider's account id
//   - [Playlist] : a saved CD bound to its remote playlist
//   - [PlaylistTrack] : one track of a saved CD
//   - [Session] : browsing session with its OAuth token and [SeenSet]
package models
