// Package services adapts the external music providers to small interfaces consumed by the tasks and server packages.
//
// # Providers
//
//   - [Catalog] : the streaming provider (Spotify Web API via zmb3/spotify), implemented by [SpotifyCatalog]
//   - [SimilarityProvider] : the similar-track metadata service (Last.fm), implemented by [LastFMClient]
//   - [VideoSearcher] : the video provider (YouTube Data API v3), implemented by [YouTubeSearcher]
//
// Catalog handles are credential-bound, so they are built per request by [SpotifyClients.Catalog] from the session's token.
// The similarity and video providers use API keys and can be shared.
//
// # Credentials
//
// [TokenGuard] keeps the session's OAuth token usable: tokens expiring within a minute are refreshed through a [TokenRefresher]
// before any provider call. [OAuthRefresher] is the production refresher backed by [oauth2.Config].
package services
