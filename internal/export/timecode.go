// Package export renders review records into editorial interchange
// formats, currently CMX 3600 EDL for import into Resolve, Premiere,
// and Avid.
package export

import (
	"fmt"
	"math"
	"time"
)

// DefaultFPS is the frame rate assumed when none is given.
const DefaultFPS = 24

// Timecode formats seconds as a display timecode. Hours are omitted
// when zero: MM:SS:FF, otherwise HH:MM:SS:FF. Frames are counted at
// 24fps.
func Timecode(seconds float64) string {
	if seconds == 0 || math.IsNaN(seconds) {
		return "00:00:00"
	}
	h := int(seconds / 3600)
	m := int(math.Mod(seconds, 3600) / 60)
	s := int(math.Mod(seconds, 60))
	f := int(math.Mod(seconds, 1) * DefaultFPS)
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d:%02d", h, m, s, f)
	}
	return fmt.Sprintf("%02d:%02d:%02d", m, s, f)
}

// TimecodeEDL formats seconds as SMPTE HH:MM:SS:FF at the given frame
// rate. The fractional-second frame count truncates, so values that
// cannot be represented exactly in binary round down.
func TimecodeEDL(seconds float64, fps int) string {
	if seconds == 0 || math.IsNaN(seconds) {
		return "00:00:00:00"
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	h := int(seconds / 3600)
	m := int(math.Mod(seconds, 3600) / 60)
	s := int(math.Mod(seconds, 60))
	f := int(math.Mod(seconds, 1) * float64(fps))
	return fmt.Sprintf("%02d:%02d:%02d:%02d", h, m, s, f)
}

// RelativeDate formats an RFC3339 timestamp relative to now: "just
// now", "5m ago", "3h ago", "2d ago", then "Jan 2" beyond a week.
// Unparseable input yields the empty string.
func RelativeDate(iso string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}

	diff := now.Sub(t)
	minutes := int(diff.Minutes())
	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("Jan 2")
}
