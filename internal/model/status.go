package model

// Status is the lifecycle state of a JobNode within a pipeline run.
//
// Transitions: pending → running → succeeded|failed, with
// pending → cancelled (ancestor failure) and pending → skipped
// (conditional skip) as alternates. Terminal states are final.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}
