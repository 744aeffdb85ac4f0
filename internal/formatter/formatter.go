// package formatter renders track lists and operator reports as CSV, Markdown, plain text and styled terminal output
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/rollplay/internal/models"
	"github.com/desertthunder/rollplay/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// TrackList is a named list of discovered tracks.
type TrackList struct {
	Name        string
	Description string
	Queries     []string
	Tracks      []models.Track
}

// ParseFormat maps a flag value to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Export renders list in format.
func Export(list *TrackList, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(list)
	case FormatMarkdown:
		return ExportToMarkdown(list)
	case FormatText:
		return ExportToText(list)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts a TrackList to CSV format with columns: ID, Title, Artist, Album, URI, Preview
func ExportToCSV(list *TrackList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "URI", "Preview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range list.Tracks {
		record := []string{track.ID, track.Title, track.Artist, track.Album, track.URI, preview(track)}
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

// ExportToMarkdown converts a TrackList to Markdown, linking each track to its catalog page.
func ExportToMarkdown(list *TrackList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", list.Description)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(list.Tracks))
	if len(list.Queries) > 0 {
		fmt.Fprintf(&buf, "**Searched**: %s\n", strings.Join(list.Queries, ", "))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range list.Tracks {
		title := track.Title
		if track.ExternalURL != "" {
			title = fmt.Sprintf("[%s](%s)", track.Title, track.ExternalURL)
		}
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, track.Artist, title, albumPart)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a TrackList to plain text format
func ExportToText(list *TrackList) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", list.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(list.Tracks))

	for i, track := range list.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}

	return buf.Bytes(), nil
}

// WriteExport renders list in format and writes it to path.
func WriteExport(list *TrackList, format Format, path string) error {
	data, err := Export(list, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return nil
}

func preview(t models.Track) string {
	if t.PreviewURL == nil {
		return ""
	}
	return *t.PreviewURL
}
