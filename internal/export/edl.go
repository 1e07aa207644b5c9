package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/clipreview/clipreview/internal/review"
)

// edlColors maps comment colors to the marker colors EDL importers
// recognize. Unknown colors fall back to YELLOW.
var edlColors = map[review.Color]string{
	review.ColorRed:    "RED",
	review.ColorYellow: "YELLOW",
	review.ColorGreen:  "GREEN",
	review.ColorBlue:   "BLUE",
	review.ColorPurple: "PURPLE",
}

// EDL renders the record's comments as a CMX 3600 edit decision list.
// Each comment becomes a one-frame event carrying the comment text as
// a locator note; a summary block with per-color counts closes the
// file.
func EDL(rec *review.Record, fileName string, fps int) string {
	return edlAt(rec, fileName, fps, time.Now().UTC())
}

func edlAt(rec *review.Record, fileName string, fps int, now time.Time) string {
	if fps <= 0 {
		fps = DefaultFPS
	}

	var b strings.Builder
	title := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	fmt.Fprintf(&b, "TITLE: %s — Video Review\n", title)
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	sorted := make([]review.Comment, len(rec.Comments))
	copy(sorted, rec.Comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	for i, c := range sorted {
		srcIn := TimecodeEDL(c.Timestamp, fps)
		srcOut := TimecodeEDL(c.Timestamp+1/float64(fps), fps)

		// Edit number, reel, track, transition, source in/out, record
		// in/out. Markers occupy a single frame.
		fmt.Fprintf(&b, "%03d  AX       V     C        %s %s %s %s\n",
			i+1, srcIn, srcOut, srcIn, srcOut)
		fmt.Fprintf(&b, "* FROM CLIP NAME: %s\n", fileName)

		edlColor, ok := edlColors[c.Color]
		if !ok {
			edlColor = "YELLOW"
		}
		fmt.Fprintf(&b, "* LOC: %s %s     %s: %s\n", srcIn, edlColor, c.Author, c.Text)
		fmt.Fprintf(&b, "* COMMENT: [%s] %s: %s\n",
			strings.ToUpper(string(c.Color)), c.Author, c.Text)
		if c.Drawing != "" {
			b.WriteString("* COMMENT: [DRAWING ATTACHED]\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("* === VIDEO REVIEW SUMMARY ===\n")
	fmt.Fprintf(&b, "* Total comments: %d\n", len(rec.Comments))
	fmt.Fprintf(&b, "* Exported: %s\n", now.Format(time.RFC3339))

	counts := make(map[review.Color]int)
	var order []review.Color
	for _, c := range rec.Comments {
		if counts[c.Color] == 0 {
			order = append(order, c.Color)
		}
		counts[c.Color]++
	}
	for _, color := range order {
		plural := "s"
		if counts[color] == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "* %s: %d comment%s\n", color, counts[color], plural)
	}

	return b.String()
}
