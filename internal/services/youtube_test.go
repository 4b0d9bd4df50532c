package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const youtubeSearchURL = "https://youtube.googleapis.com/youtube/v3/search"

func newMockSearcher(t *testing.T) *YouTubeSearcher {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	searcher, err := NewYouTubeSearcher(context.Background(), "key", nil, option.WithHTTPClient(client))
	require.NoError(t, err)
	return searcher
}

func TestYouTubeSearcher(t *testing.T) {
	t.Run("SearchVideos", func(t *testing.T) {
		searcher := newMockSearcher(t)

		var params map[string]string
		httpmock.RegisterResponder(http.MethodGet, youtubeSearchURL, func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			params = map[string]string{
				"q":               q.Get("q"),
				"maxResults":      q.Get("maxResults"),
				"type":            q.Get("type"),
				"videoCategoryId": q.Get("videoCategoryId"),
				"part":            q.Get("part"),
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"items": []any{
					map[string]any{"id": map[string]any{"kind": "youtube#video", "videoId": "v1"},
						"snippet": map[string]any{"title": "Creep", "channelTitle": "Radiohead - Topic"}},
					map[string]any{"id": map[string]any{"kind": "youtube#channel"}},
					map[string]any{"id": map[string]any{"kind": "youtube#video", "videoId": "v2"},
						"snippet": map[string]any{"title": "Creep (Official Audio)", "channelTitle": "Radiohead"}},
				},
			})
		})

		videos, err := searcher.SearchVideos(context.Background(), "Radiohead Creep Official Audio")
		require.NoError(t, err)
		require.Len(t, videos, 2)

		assert.Equal(t, "v1", videos[0].ID)
		assert.Equal(t, "Radiohead - Topic", videos[0].Channel)
		assert.Equal(t, "Creep (Official Audio)", videos[1].Title)

		assert.Equal(t, "Radiohead Creep Official Audio", params["q"])
		assert.Equal(t, "5", params["maxResults"])
		assert.Equal(t, "video", params["type"])
		assert.Equal(t, "10", params["videoCategoryId"])
		assert.Equal(t, "snippet", params["part"])
	})

	t.Run("upstream error", func(t *testing.T) {
		searcher := newMockSearcher(t)
		httpmock.RegisterResponder(http.MethodGet, youtubeSearchURL,
			httpmock.NewJsonResponderOrPanic(http.StatusForbidden, map[string]any{
				"error": map[string]any{"code": 403, "message": "quotaExceeded"},
			}))

		_, err := searcher.SearchVideos(context.Background(), "x")
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})
}
