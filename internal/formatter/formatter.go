// package formatter exports saved CDs to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/samber/lo"
)

const coverFilename = "cover.jpg"

// Format names an export format accepted by [Export].
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat validates a format name, defaulting to [FormatText] when empty.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, s)
}

// Export renders cd in the given format.
func Export(cd *models.CD, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return ExportToMarkdown(cd, "")
	case FormatCSV:
		return ExportToCSV(cd)
	default:
		return ExportToText(cd)
	}
}

// tracks returns the CD's tracks in burn order. Ids the provider did not resolve, or all of
// them when the CD was loaded without the provider, come back as id-only tracks.
func tracks(cd *models.CD) []models.Track {
	ids := cd.Playlist.TrackIDs()
	if len(ids) == 0 {
		return cd.Tracks
	}

	resolved := lo.KeyBy(cd.Tracks, func(t models.Track) string { return t.ID })
	return lo.Map(ids, func(id string, _ int) models.Track {
		if t, ok := resolved[id]; ok {
			return t
		}
		return models.Track{ID: id}
	})
}

func trackLine(t models.Track) string {
	if t.Name == "" {
		return models.TrackURI(t.ID)
	}
	return fmt.Sprintf("%s - %s", t.ArtistLine(), t.Name)
}

// ExportToCSV converts a CD to CSV format with columns: Position, ID, Title, Artists, Album, URI
func ExportToCSV(cd *models.CD) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artists", "Album", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range tracks(cd) {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			track.ArtistLine(),
			track.Album,
			track.URI(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a CD to Markdown format with optional cover image
func ExportToMarkdown(cd *models.CD, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	list := tracks(cd)

	fmt.Fprintf(&buf, "# %s\n\n", cd.Playlist.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(list))
	fmt.Fprintf(&buf, "**Burned**: %s\n", cd.Playlist.CreatedAt.Format(time.DateOnly))
	fmt.Fprintf(&buf, "**Playlist**: [%s](https://open.spotify.com/playlist/%s)\n\n", cd.Playlist.RemoteID, cd.Playlist.RemoteID)

	buf.WriteString("## Tracks\n\n")
	for i, track := range list {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, trackLine(track), albumPart)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a CD to plain text format
func ExportToText(cd *models.CD) ([]byte, error) {
	var buf bytes.Buffer
	list := tracks(cd)

	fmt.Fprintf(&buf, "CD: %s\n", cd.Playlist.Name)
	fmt.Fprintf(&buf, "Playlist: %s\n", cd.Playlist.RemoteID)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(list))

	for i, track := range list {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, trackLine(track))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidInput)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of CD metadata (without tracks)
func ToMetadataJSON(cd *models.CD) ([]byte, error) {
	meta := *cd.Playlist
	meta.Tracks = nil
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a CD to CSV format with accompanying metadata JSON file.
//
// Defaults to cd-{id} as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(cd *models.CD, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = defaultBase(cd)
	}

	csvData, err := ExportToCSV(cd)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(cd)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	// CoverErr records a cover download failure; the export itself still succeeds.
	CoverErr error
}

// WriteMarkdownExport exports a CD to Markdown format in a dedicated directory.
//
// Directory name defaults to cd-{id}. When the first track carries artwork and client is
// non-nil the cover is downloaded next to {dir}/README.md.
func WriteMarkdownExport(cd *models.CD, outputDir string, client *http.Client) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = defaultBase(cd)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir}

	var cover string
	if client != nil && len(cd.Tracks) > 0 && cd.Tracks[0].ImageURL != "" {
		if data, err := DownloadImage(client, cd.Tracks[0].ImageURL); err != nil {
			result.CoverErr = err
		} else {
			path := filepath.Join(outputDir, coverFilename)
			if err := os.WriteFile(path, data, 0644); err != nil {
				result.CoverErr = err
			} else {
				cover = coverFilename
				result.CoverImage = path
				result.Files = append(result.Files, path)
			}
		}
	}

	mdData, err := ExportToMarkdown(cd, cover)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport exports a CD to plain text format.
//
// Defaults to cd-{id}_tracks.txt as the filename.
func WriteTextExport(cd *models.CD, path string) (string, error) {
	if path == "" {
		path = defaultBase(cd) + "_tracks.txt"
	}

	textData, err := ExportToText(cd)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

func defaultBase(cd *models.CD) string {
	return fmt.Sprintf("cd-%d", cd.Playlist.ID)
}
