package model

import "time"

// Workflow is a parsed workflow document: named jobs plus trigger
// declarations. Immutable once loaded.
type Workflow struct {
	Name        string        `yaml:"name" json:"name"`
	On          Triggers      `yaml:"on" json:"on"`
	Permissions PermissionSet `yaml:"permissions" json:"permissions"`
	Jobs        []Job         `yaml:"jobs" json:"jobs"`

	// Path is the reference the workflow was loaded under, set by the store.
	Path string `yaml:"-" json:"path"`
}

// Callable reports whether the workflow may be invoked by another
// workflow as a single job.
func (w *Workflow) Callable() bool {
	return w.On.Call
}

// Job returns the job with the given ID, or nil if it does not exist.
func (w *Workflow) Job(id string) *Job {
	for i := range w.Jobs {
		if w.Jobs[i].ID == id {
			return &w.Jobs[i]
		}
	}
	return nil
}

// Triggers is the declared trigger set of a workflow. Call marks the
// workflow as callable from another workflow's job.
type Triggers struct {
	Events    []string `yaml:"events" json:"events"`
	Schedules []string `yaml:"schedules" json:"schedules"`
	Call      bool     `yaml:"call" json:"call"`
}

// Job condition values. An empty condition runs unconditionally.
const (
	CondAlways = "always"
	CondNever  = "never"
)

// Job declares one unit of work within a workflow. A job either carries
// steps or invokes a callable workflow via Uses, never both.
type Job struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name,omitempty" json:"name,omitempty"`
	Uses        string        `yaml:"uses,omitempty" json:"uses,omitempty"`
	Needs       []string      `yaml:"needs,omitempty" json:"needs,omitempty"`
	Permissions PermissionSet `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	If          string        `yaml:"if,omitempty" json:"if,omitempty"`
	Timeout     string        `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Steps       []Step        `yaml:"steps,omitempty" json:"steps,omitempty"`

	// TimeoutDuration is parsed from Timeout during normalization.
	TimeoutDuration time.Duration `yaml:"-" json:"-"`
}

// Step is a single execution unit within a job. The orchestrator never
// interprets step contents; they are handed to a step executor as-is.
type Step struct {
	Name    string            `yaml:"name,omitempty" json:"name,omitempty"`
	Run     string            `yaml:"run" json:"run"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	Retries int               `yaml:"retries,omitempty" json:"retries,omitempty"`
	Timeout string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// TimeoutDuration is parsed from Timeout during normalization.
	TimeoutDuration time.Duration `yaml:"-" json:"-"`
}

// DisplayName returns the step's name, falling back to its command.
func (s Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Run
}
