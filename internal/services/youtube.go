// YouTube Data API implementation of [VideoSearcher]
package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	videoMaxResults = 5
	musicCategoryID = "10"
)

var _ VideoSearcher = (*YouTubeSearcher)(nil)

// YouTubeSearcher searches music videos with the YouTube Data API.
type YouTubeSearcher struct {
	svc    *youtube.Service
	logger *log.Logger
}

// NewYouTubeSearcher creates a searcher authenticated with apiKey.
//
// Extra client options are appended, so tests can pass [option.WithHTTPClient] or [option.WithEndpoint].
func NewYouTubeSearcher(ctx context.Context, apiKey string, logger *log.Logger, opts ...option.ClientOption) (*YouTubeSearcher, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create youtube service: %w", shared.ErrServiceUnavailable, err)
	}

	return &YouTubeSearcher{svc: svc, logger: shared.WithLogger(logger, "service", "youtube")}, nil
}

// SearchVideos returns up to five music-category videos for query.
func (y *YouTubeSearcher) SearchVideos(ctx context.Context, query string) ([]models.Video, error) {
	resp, err := y.svc.Search.List([]string{"snippet"}).
		Q(query).
		MaxResults(videoMaxResults).
		Type("video").
		VideoCategoryId(musicCategoryID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: youtube search %q: %w", shared.ErrAPIRequest, query, err)
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := models.Video{ID: item.Id.VideoId}
		if item.Snippet != nil {
			v.Title = item.Snippet.Title
			v.Channel = item.Snippet.ChannelTitle
		}
		videos = append(videos, v)
	}

	y.logger.Debug("video search", "query", query, "results", len(videos))
	return videos, nil
}
