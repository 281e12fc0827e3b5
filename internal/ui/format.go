package ui

import (
	"fmt"
	"strings"

	"chatterm/internal/app/transcript"
)

// FormatEntry renders one transcript entry as terminal text. Own messages are
// marked with an asterisk; media lines name the kind, the original filename
// and the URL so the reader can open it out of band.
func FormatEntry(e transcript.Entry) string {
	marker := "  "
	if e.Own {
		marker = "* "
	}

	head := marker
	if !e.Timestamp.IsZero() {
		head += "[" + e.Timestamp.Format("15:04") + "] "
	}
	head += e.Author + ":"

	var b strings.Builder
	b.WriteString(head)

	if e.Body != "" {
		body := strings.ReplaceAll(e.Body, "\n", "\n    ")
		b.WriteString(" ")
		b.WriteString(body)
	}

	if e.HasMedia() {
		kind := "file"
		switch {
		case strings.HasPrefix(e.MediaType, "image/"):
			kind = "image"
		case strings.HasPrefix(e.MediaType, "video/"):
			kind = "video"
		}

		name := e.MediaFilename
		if name == "" {
			name = e.MediaURL
		}

		b.WriteString(fmt.Sprintf("\n    [%s] %s %s", kind, name, e.MediaURL))
	}

	return b.String()
}

// FormatStatus renders the pinned status line from connection state and the
// online panel.
func FormatStatus(connected bool, label string, online []string) string {
	state := "offline, reconnecting"
	if connected {
		state = "connected"
	}
	if label != "" && label != "Send" {
		state = strings.ToLower(strings.TrimSuffix(label, "..."))
	}

	if len(online) == 0 {
		return fmt.Sprintf(" chatterm | %s", state)
	}

	return fmt.Sprintf(" chatterm | %s | online (%d): %s", state, len(online), strings.Join(online, ", "))
}
