package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/mindmap/internal/repositories"
	"github.com/desertthunder/mindmap/internal/server"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/desertthunder/mindmap/internal/tasks"
	"github.com/desertthunder/mindmap/internal/web"
	"github.com/urfave/cli/v3"
)

const sessionSweepInterval = 15 * time.Minute

// Serve wires the provider clients, tasks and stores into the web server and runs it until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, sessions, err := r.buildServer(ctx)
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	go r.sweepSessions(ctx, sessions, sessionSweepInterval)

	if cmd.Bool("open") {
		go func() {
			url := "http://" + addr
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "url", url, "error", err)
			}
		}()
	}

	return srv.ListenAndServe(ctx, addr)
}

func (r *Runner) buildServer(ctx context.Context) (*server.Server, *repositories.SessionRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, nil, err
	}

	creds := r.config.Credentials
	recs := r.config.Recommendations

	spotify := services.NewSpotifyClients(creds.Spotify, r.logger)
	guard := services.NewTokenGuard(spotify.Refresher(), services.TokenGuardOpts{Logger: r.logger})

	lastfm := services.NewLastFMClient(creds.LastFM.APIKey, services.LastFMOpts{
		HTTPClient:        r.httpClient,
		RequestsPerSecond: creds.LastFM.RequestsPerSecond,
		Logger:            r.logger,
	})

	youtube, err := services.NewYouTubeSearcher(ctx, creds.YouTube.APIKey, r.logger)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}

	sessions := repositories.NewSessionRepository(db)
	srv, err := server.New(server.Deps{
		Auth:     spotify,
		Guard:    guard,
		Sessions: sessions,
		Recommender: tasks.NewRecommender(lastfm, tasks.RecommenderOpts{
			Count:         recs.Count,
			Margin:        &recs.Margin,
			RememberShown: recs.RememberShown,
			Logger:        r.logger,
		}),
		Videos:        tasks.NewVideoMatcher(youtube, r.logger),
		CDs:           tasks.NewCDBuilder(repositories.NewPlaylistRepository(db), r.logger),
		Renderer:      renderer,
		Logger:        r.logger,
		SessionTTL:    r.config.Server.SessionTTL.Duration,
		SecureCookies: r.config.Server.SecureCookies,
		SearchLimit:   recs.SearchLimit,
	})
	if err != nil {
		return nil, nil, err
	}
	return srv, sessions, nil
}

// sweepSessions deletes expired session rows every interval until ctx is done.
func (r *Runner) sweepSessions(ctx context.Context, sessions *repositories.SessionRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				r.logger.Warn("failed to delete expired sessions", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Debug("deleted expired sessions", "count", n)
			}
		}
	}
}
