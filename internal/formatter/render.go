package formatter

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/rollplay/internal/discovery"
	"github.com/desertthunder/rollplay/internal/imaging"
	"github.com/desertthunder/rollplay/internal/models"
)

// RenderPlan describes a discovery plan: the die (in roll mode), the playlist name and the queries to search.
func RenderPlan(plan discovery.Plan) string {
	var b strings.Builder

	b.WriteString(styles.Title(plan.Name))
	b.WriteString("\n")
	if plan.Description != "" {
		b.WriteString(plan.Description + "\n")
	}

	if r := plan.Roll; r != nil {
		fmt.Fprintf(&b, "Die:    D%d\n", r.Context.DiceFaces)
		fmt.Fprintf(&b, "Roll:   %d\n", r.Context.RollValue)
		fmt.Fprintf(&b, "Genre:  %s (%d of %d)\n", styles.OK(r.Genre), r.Index+1, len(r.Context.Genres))
		if r.Exotic {
			fmt.Fprintf(&b, "Exotic: %s\n", styles.Warn("yes"))
		} else {
			b.WriteString("Exotic: no\n")
		}
	}

	b.WriteString("\nQueries:\n")
	for _, q := range plan.SearchQueries() {
		fmt.Fprintf(&b, "  - %s\n", q)
	}
	return b.String()
}

// RenderTracks lists tracks with a styled header.
func RenderTracks(list *TrackList) string {
	var b strings.Builder
	b.WriteString(styles.Title(fmt.Sprintf("%s (%d tracks)", list.Name, len(list.Tracks))))
	b.WriteString("\n")
	for i, t := range list.Tracks {
		fmt.Fprintf(&b, "%2d. %s - %s\n", i+1, t.Artist, t.Title)
	}
	if len(list.Tracks) == 0 {
		b.WriteString(styles.Help("No tracks found") + "\n")
	}
	return b.String()
}

// RenderSessions tabulates stored sessions, marking the ones that have lapsed.
func RenderSessions(sessions []*models.Session, now time.Time) string {
	if len(sessions) == 0 {
		return styles.Help("No sessions") + "\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tSCOPES\tEXPIRES\tSTATUS")
	for _, s := range sessions {
		status := styles.OK("active")
		if s.Expired(now) {
			status = styles.Err("expired")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.User.Email, len(s.Credential.Scopes), s.ExpiresAt.Local().Format(time.DateTime), status)
	}
	_ = w.Flush()
	return b.String()
}

// RenderHistory tabulates publish records, newest first as given.
func RenderHistory(records []*models.PublishRecord) string {
	if len(records) == 0 {
		return styles.Help("No playlists published yet") + "\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tNAME\tTRACKS\tSTATUS\tURL")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Name, r.TrackCount, statusLabel(r), r.PlaylistURL)
	}
	_ = w.Flush()

	for _, r := range records {
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "%s %s: %s\n", styles.Warn("!"), r.Name, warning)
		}
	}
	return b.String()
}

// RenderNormalize summarizes an image normalization.
func RenderNormalize(input string, inputSize int, res *imaging.Result, output string) string {
	var b strings.Builder
	b.WriteString(styles.OK("Normalized " + input))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Size:    %s -> %s\n", byteSize(inputSize), byteSize(len(res.Data)))
	fmt.Fprintf(&b, "Quality: %d\n", res.Quality)
	fmt.Fprintf(&b, "Pixels:  %dx%d\n", res.Width, res.Height)
	fmt.Fprintf(&b, "Output:  %s\n", output)
	return b.String()
}

func statusLabel(r *models.PublishRecord) string {
	switch {
	case r.ErrorCode == "":
		return styles.OK(fmt.Sprintf("%d", r.Status))
	case r.PlaylistID != "":
		return styles.Warn(fmt.Sprintf("%d %s", r.Status, r.ErrorCode))
	default:
		return styles.Err(fmt.Sprintf("%d %s", r.Status, r.ErrorCode))
	}
}

func byteSize(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f KiB", float64(n)/1024)
}
