package model

import "time"

// PipelineRun is the record of one invocation of a root workflow: the
// final status of every JobNode plus the outputs of succeeded nodes.
// Produced by the scheduler once the DAG has fully drained.
type PipelineRun struct {
	ID   string
	Root string

	Statuses  map[string]Status
	Outputs   map[string]map[string]string
	Durations map[string]time.Duration

	StartedAt  time.Time
	FinishedAt time.Time
}
