package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourceplane/flowgate/internal/model"
)

// Workflow validates a parsed workflow and brings it to canonical form:
// defaulted least-privilege permissions, parsed timeouts, validated
// trigger schedules. All stringly-typed fields are resolved here once;
// nothing is re-parsed at run time.
func Workflow(wf *model.Workflow) error {
	if wf == nil {
		return fmt.Errorf("workflow cannot be nil")
	}
	if wf.Name == "" {
		return fmt.Errorf("workflow must have a name")
	}
	if len(wf.Jobs) == 0 {
		return fmt.Errorf("workflow %s declares no jobs", wf.Name)
	}

	if wf.Permissions == nil {
		wf.Permissions = model.DefaultPermissions()
	}
	if err := validatePermissions(wf.Permissions); err != nil {
		return fmt.Errorf("workflow %s: %w", wf.Name, err)
	}

	for _, expr := range wf.On.Schedules {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("workflow %s: invalid schedule %q: %w", wf.Name, expr, err)
		}
	}

	seen := make(map[string]bool, len(wf.Jobs))
	for i := range wf.Jobs {
		job := &wf.Jobs[i]
		if err := normalizeJob(job); err != nil {
			return fmt.Errorf("workflow %s: %w", wf.Name, err)
		}
		if seen[job.ID] {
			return fmt.Errorf("workflow %s: duplicate job id %q", wf.Name, job.ID)
		}
		seen[job.ID] = true
	}

	return nil
}

func normalizeJob(job *model.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job must have an id")
	}
	if strings.Contains(job.ID, "/") {
		return fmt.Errorf("job %s: id must not contain '/'", job.ID)
	}
	if job.Uses != "" && len(job.Steps) > 0 {
		return fmt.Errorf("job %s: uses and steps are mutually exclusive", job.ID)
	}
	if job.Uses == "" && len(job.Steps) == 0 {
		return fmt.Errorf("job %s: must declare steps or a uses reference", job.ID)
	}

	switch job.If {
	case "", model.CondAlways, model.CondNever:
	default:
		return fmt.Errorf("job %s: unknown condition %q", job.ID, job.If)
	}

	needSeen := make(map[string]bool, len(job.Needs))
	for _, need := range job.Needs {
		if need == "" {
			return fmt.Errorf("job %s: empty needs reference", job.ID)
		}
		if strings.Contains(need, "/") {
			return fmt.Errorf("job %s: needs %q may only name a job in the same workflow", job.ID, need)
		}
		if needSeen[need] {
			return fmt.Errorf("job %s: duplicate needs reference %q", job.ID, need)
		}
		needSeen[need] = true
	}

	if job.Permissions != nil {
		if err := validatePermissions(job.Permissions); err != nil {
			return fmt.Errorf("job %s: %w", job.ID, err)
		}
	}

	if job.Timeout != "" {
		d, err := time.ParseDuration(job.Timeout)
		if err != nil {
			return fmt.Errorf("job %s: invalid timeout %q: %w", job.ID, job.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("job %s: timeout must be positive", job.ID)
		}
		job.TimeoutDuration = d
	}

	for si := range job.Steps {
		step := &job.Steps[si]
		if step.Run == "" {
			return fmt.Errorf("job %s: step %d has no run command", job.ID, si)
		}
		if step.Retries < 0 {
			return fmt.Errorf("job %s: step %d has negative retries", job.ID, si)
		}
		if step.Timeout != "" {
			d, err := time.ParseDuration(step.Timeout)
			if err != nil {
				return fmt.Errorf("job %s: step %d invalid timeout %q: %w", job.ID, si, step.Timeout, err)
			}
			if d <= 0 {
				return fmt.Errorf("job %s: step %d timeout must be positive", job.ID, si)
			}
			step.TimeoutDuration = d
		}
	}

	return nil
}

func validatePermissions(perms model.PermissionSet) error {
	for scope, access := range perms {
		if scope == "" {
			return fmt.Errorf("permission scope must not be empty")
		}
		if !access.Valid() {
			return fmt.Errorf("permission scope %s: unknown access level %q", scope, access)
		}
	}
	return nil
}
