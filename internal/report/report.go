package report

import (
	"time"

	"github.com/sourceplane/flowgate/internal/model"
)

// Summary is the aggregated result of one pipeline run: a single binary
// verdict plus per-status counts and the outputs of succeeded jobs.
type Summary struct {
	RunID   string
	Root    string
	Verdict model.Status

	Statuses map[string]model.Status
	Counts   map[model.Status]int

	// Outputs holds outputs of succeeded jobs only. A failed run still
	// reports the outputs its succeeded jobs produced.
	Outputs map[string]map[string]string

	Duration time.Duration
}

// Aggregate reduces a finished run to its summary. The verdict is
// succeeded only when every node succeeded; any failed, cancelled or
// skipped node makes the whole run failed.
func Aggregate(run *model.PipelineRun) *Summary {
	s := &Summary{
		RunID:    run.ID,
		Root:     run.Root,
		Verdict:  model.StatusSucceeded,
		Statuses: run.Statuses,
		Counts:   make(map[model.Status]int),
		Outputs:  make(map[string]map[string]string),
		Duration: run.FinishedAt.Sub(run.StartedAt),
	}

	for id, status := range run.Statuses {
		s.Counts[status]++
		if status != model.StatusSucceeded {
			s.Verdict = model.StatusFailed
			continue
		}
		if outs, ok := run.Outputs[id]; ok {
			s.Outputs[id] = outs
		}
	}

	return s
}

// Succeeded reports whether the run as a whole succeeded.
func (s *Summary) Succeeded() bool {
	return s.Verdict == model.StatusSucceeded
}
