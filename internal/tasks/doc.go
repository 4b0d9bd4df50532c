// Package tasks orchestrates the provider calls behind each page of the mindmap.
//
// # Operations
//
//  1. [ResolveTrack] : maps a (title, artist) pair to the catalog's first field-scoped hit, or nil
//  2. [Recommender.Recommend] : similar tracks for a seed, skipping everything in the session's seen-set
//     - adds the seed to the seen-set (recommended ids only with RememberShown)
//     - requests Count + len(seen) + Margin candidates so skipped ones can be replaced
//     - resolves candidates in provider order and stops at Count
//  3. [VideoMatcher.Find] : picks a playable video, preferring "Official Audio" titles, then "Topic" channels
//  4. [CDBuilder.Create] : creates the remote playlist, adds the tracks, then records the CD in one local transaction
//
// [SearchCatalog], [SelectedTracks], [CDBuilder.List] and [CDBuilder.Detail] back the browsing pages.
//
// All calls are sequential. Catalog handles are passed per call because they are bound to the session's token.
package tasks
