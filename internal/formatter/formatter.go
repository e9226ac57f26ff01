// package formatter renders notification history, replay traces and resolution lists as
// plain text, CSV and JSON for the CLI
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/sim"
)

const timestampLayout = "2006-01-02 15:04:05"

// HistoryToCSV converts notification history to CSV with columns:
// ID, Type, Message, Link, Disposition, Delivered, Acknowledged
func HistoryToCSV(entries []*models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Type", "Message", "Link", "Disposition", "Delivered", "Acknowledged"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.Notification.ID, 10),
			string(e.Notification.Type),
			e.Notification.Message,
			e.Notification.Link,
			e.Disposition,
			e.DeliveredAt.Format(timestampLayout),
			formatOptionalTime(e.AcknowledgedAt),
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

// HistoryToText converts notification history to an aligned plain text listing
func HistoryToText(entries []*models.HistoryEntry) []byte {
	var buf bytes.Buffer

	if len(entries) == 0 {
		buf.WriteString("No notifications recorded.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Notifications: %d\n\n", len(entries)))
	for _, e := range entries {
		status := "unread"
		if e.AcknowledgedAt != nil {
			status = "read"
		}
		buf.WriteString(fmt.Sprintf("#%-6d %-12s %-12s %-7s %s\n",
			e.Notification.ID, e.Notification.Type, e.Disposition, status, e.Notification.Message))
		if e.Notification.Link != "" {
			buf.WriteString(fmt.Sprintf("        -> %s\n", e.Notification.Link))
		}
	}

	return buf.Bytes()
}

// TraceToText renders a replay trace followed by the final item states
func TraceToText(res *sim.Result) []byte {
	var buf bytes.Buffer

	for _, l := range res.Lines {
		buf.WriteString(fmt.Sprintf("%s  %-10s %s\n", FormatOffset(l.At), l.Subject, l.Text))
	}

	active := res.Active
	if active == "" {
		active = "none"
	}
	buf.WriteString(fmt.Sprintf("\nActive: %s\n", active))
	for _, it := range res.Items {
		quality := it.Quality
		if quality == "" {
			quality = "-"
		}
		liked := " "
		if it.Like.Active {
			liked = "♥"
		}
		buf.WriteString(fmt.Sprintf("  %-10s %-8s %s %4d likes %4d views  %s\n",
			it.ID, it.State, liked, it.Like.Count, it.Views, quality))
	}

	return buf.Bytes()
}

// TraceToCSV converts a replay trace to CSV with columns: At, Subject, Event
func TraceToCSV(res *sim.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"At", "Subject", "Event"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, l := range res.Lines {
		if err := writer.Write([]string{FormatOffset(l.At), l.Subject, l.Text}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ResolutionsToText lists resolution options, marking the current one and premium-only ones
func ResolutionsToText(opts []models.ResolutionOption, current string, premium bool) []byte {
	var buf bytes.Buffer

	if len(opts) == 0 {
		buf.WriteString("No sources available.\n")
		return buf.Bytes()
	}

	for _, o := range opts {
		marker := " "
		if o.Value == current {
			marker = "*"
		}
		note := ""
		if o.RequiresEntitlement && !premium {
			note = " (premium)"
		}
		buf.WriteString(fmt.Sprintf("%s %-6s %s%s\n", marker, o.Label, o.SourceURL, note))
	}

	return buf.Bytes()
}

// ToJSON renders v as indented JSON with a trailing newline
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport writes data to path, creating or truncating the file, and returns the path
func WriteExport(path string, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty output path")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// FormatOffset formats a replay offset as mm:ss.mmm
func FormatOffset(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	millis := int((d % time.Second) / time.Millisecond)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}
