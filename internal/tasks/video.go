package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
)

// VideoMatcher finds the best playable video for a track.
type VideoMatcher struct {
	videos services.VideoSearcher
	logger *log.Logger
}

// NewVideoMatcher creates a matcher over the video searcher.
func NewVideoMatcher(videos services.VideoSearcher, logger *log.Logger) *VideoMatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &VideoMatcher{videos: videos, logger: shared.WithLogger(logger, "task", "video")}
}

// Find returns the id of the best video for track by artist.
//
// Returns [shared.ErrInvalidInput] for blank input and [shared.ErrVideoNotFound] when the search is empty.
func (m *VideoMatcher) Find(ctx context.Context, track, artist string) (string, error) {
	track, artist = strings.TrimSpace(track), strings.TrimSpace(artist)
	if track == "" || artist == "" {
		return "", fmt.Errorf("%w: track and artist are required", shared.ErrInvalidInput)
	}

	query := fmt.Sprintf("%s %s Official Audio", artist, track)
	videos, err := m.videos.SearchVideos(ctx, query)
	if err != nil {
		if errors.Is(err, shared.ErrAPIRequest) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	video := SelectVideo(videos)
	if video == nil {
		return "", fmt.Errorf("%w: %s", shared.ErrVideoNotFound, query)
	}

	m.logger.Debug("video match", "query", query, "video", video.ID, "title", video.Title)
	return video.ID, nil
}

// SelectVideo picks a video by priority:
//  1. first title containing "official audio"
//  2. first channel containing "topic" (auto-generated artist channels)
//  3. first result
//
// Returns nil for an empty list.
func SelectVideo(videos []models.Video) *models.Video {
	if len(videos) == 0 {
		return nil
	}

	for i := range videos {
		if strings.Contains(strings.ToLower(videos[i].Title), "official audio") {
			return &videos[i]
		}
	}
	for i := range videos {
		if strings.Contains(strings.ToLower(videos[i].Channel), "topic") {
			return &videos[i]
		}
	}
	return &videos[0]
}
