package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/mindmap/internal/formatter"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/repositories"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/desertthunder/mindmap/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// CDsList prints the CDs saved by --user, newest first.
func (r *Runner) CDsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	userID := cmd.String("user")
	if _, err := repositories.NewUserRepository(db).Get(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	cds, err := repositories.NewPlaylistRepository(db).ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(cds, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("CDs for %s (%d)", userID, len(cds)))
	for _, cd := range cds {
		r.writePlain("%4d  %-32s %2d tracks  %s  %s\n",
			cd.ID, cd.Name, len(cd.Tracks), cd.CreatedAt.Format(time.DateOnly), cd.RemoteID)
	}
	return nil
}

// CDsShow exports one CD by local id, to stdout or to files under --output.
func (r *Runner) CDsShow(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	if raw == "" {
		return fmt.Errorf("%w: CD id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: CD id %q is not a number", shared.ErrInvalidArgument, raw)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	cd, err := r.loadCD(ctx, repositories.NewPlaylistRepository(db), id)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		data, err := formatter.Export(cd, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	switch format {
	case formatter.FormatCSV:
		result, err := formatter.WriteCSVExport(cd, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s and %s\n", result.TracksFile, result.MetadataFile)
	case formatter.FormatMarkdown:
		result, err := formatter.WriteMarkdownExport(cd, output, r.httpClient)
		if err != nil {
			return err
		}
		if result.CoverErr != nil {
			r.logger.Warn("failed to save cover image", "error", result.CoverErr)
		}
		r.writePlain("✓ Wrote %s\n", result.Directory)
	default:
		path, err := formatter.WriteTextExport(cd, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", path)
	}
	return nil
}

// loadCD reads a CD and, when Spotify app credentials are available, fills in its track
// details. Provider failures are logged and the CD is exported with bare track ids.
func (r *Runner) loadCD(ctx context.Context, repo *repositories.PlaylistRepository, id int64) (*models.CD, error) {
	playlist, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	catalog := r.trackCatalog(ctx)
	if catalog == nil {
		r.logger.Debug("no spotify app credentials, exporting track ids only")
		return &models.CD{Playlist: playlist}, nil
	}

	cd, err := tasks.NewCDBuilder(repo, r.logger).Detail(ctx, catalog, playlist.UserID, id)
	if err != nil {
		r.logger.Warn("failed to fetch track details, exporting track ids only", "cd", id, "error", err)
		return &models.CD{Playlist: playlist}, nil
	}
	return cd, nil
}

// trackCatalog returns the catalog used to describe CD tracks, or nil without app credentials.
func (r *Runner) trackCatalog(ctx context.Context) services.Catalog {
	if r.catalog != nil {
		return r.catalog
	}

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil
	}
	return services.NewSpotifyClients(creds, r.logger).AppCatalog(context.WithValue(ctx, oauth2.HTTPClient, r.httpClient))
}
