package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourceplane/flowgate/internal/model"
	"github.com/sourceplane/flowgate/internal/report"
)

var statusGlyphs = map[model.Status]string{
	model.StatusSucceeded: "✓",
	model.StatusFailed:    "✗",
	model.StatusSkipped:   "-",
	model.StatusCancelled: "□",
}

// Summary returns a human-readable run summary: per-job statuses sorted
// by ID, the outputs of succeeded jobs and the overall verdict.
func Summary(s *report.Summary) string {
	var sb strings.Builder

	ids := make([]string, 0, len(s.Statuses))
	for id := range s.Statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		status := s.Statuses[id]
		glyph, ok := statusGlyphs[status]
		if !ok {
			glyph = "?"
		}
		sb.WriteString(fmt.Sprintf("%s %-12s %s\n", glyph, status, id))

		if outs, ok := s.Outputs[id]; ok {
			keys := make([]string, 0, len(outs))
			for k := range outs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				sb.WriteString(fmt.Sprintf("    %s=%s\n", k, outs[k]))
			}
		}
	}

	sb.WriteString("═══════════════════════════════════════════════════════════\n")
	sb.WriteString(fmt.Sprintf("Run %s: %s in %s\n", s.RunID, s.Verdict, s.Duration.Round(time.Millisecond)))

	counts := make([]string, 0, len(s.Counts))
	for _, status := range []model.Status{model.StatusSucceeded, model.StatusFailed, model.StatusCancelled, model.StatusSkipped} {
		if n := s.Counts[status]; n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, status))
		}
	}
	sb.WriteString(strings.Join(counts, ", ") + "\n")

	return sb.String()
}
