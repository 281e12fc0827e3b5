package ui

import "strings"

// MaxDraftLines caps how far the composer grows; further continuation lines
// are folded into the last one.
const MaxDraftLines = 5

// continuationSuffix at the end of an input line inserts a newline instead of
// submitting, the terminal analog of Shift+Enter.
const continuationSuffix = `\`

// Composer accumulates the message draft across input lines. A line ending in
// a backslash continues the draft; any other line completes it.
type Composer struct {
	lines []string
}

// NewComposer returns an empty composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Add feeds one input line into the draft. It reports whether the draft is
// complete and ready to submit.
func (c *Composer) Add(line string) bool {
	if strings.HasSuffix(line, continuationSuffix) && !strings.HasSuffix(line, continuationSuffix+continuationSuffix) {
		trimmed := strings.TrimSuffix(line, continuationSuffix)

		if len(c.lines) >= MaxDraftLines-1 {
			// Height cap reached: fold into the last line instead of growing.
			if n := len(c.lines); n > 0 {
				c.lines[n-1] += " " + trimmed
			} else {
				c.lines = append(c.lines, trimmed)
			}
			return false
		}

		c.lines = append(c.lines, trimmed)
		return false
	}

	// A doubled backslash escapes the continuation and submits literally.
	if strings.HasSuffix(line, continuationSuffix+continuationSuffix) {
		line = strings.TrimSuffix(line, continuationSuffix)
	}

	c.lines = append(c.lines, line)
	return true
}

// Pending reports whether a partial draft is buffered.
func (c *Composer) Pending() bool {
	return len(c.lines) > 0
}

// Snapshot returns the draft accumulated so far without consuming it.
func (c *Composer) Snapshot() string {
	return strings.Join(c.lines, "\n")
}

// Drain returns the full draft and resets the composer.
func (c *Composer) Drain() string {
	draft := strings.Join(c.lines, "\n")
	c.lines = nil
	return draft
}
