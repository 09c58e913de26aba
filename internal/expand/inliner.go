package expand

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sourceplane/flowgate/internal/model"
)

// Resolver maps a uses reference string to a workflow definition. Local
// paths are always supported; remote repository references are an
// extension point owned by the resolver, not this package.
type Resolver interface {
	Resolve(ref string) (*model.Workflow, error)
}

// Inliner materializes a root workflow into JobNodes, recursively
// inlining every callable workflow referenced through uses.
//
// A call-job survives inlining as a synthetic join node: the call-job's
// predecessors gate the callee's entry jobs, the callee's exit jobs gate
// the join node, and the join node's member set lets the scheduler
// surface a member failure as the call-job's own failure.
type Inliner struct {
	resolver Resolver
	log      *logrus.Entry
}

// NewInliner creates an inliner backed by the given resolver.
func NewInliner(resolver Resolver, log *logrus.Entry) *Inliner {
	return &Inliner{resolver: resolver, log: log}
}

// Inline produces the JobNode set for one pipeline run of root. Fails
// whole: on any error no nodes are returned.
func (in *Inliner) Inline(root *model.Workflow) (map[string]*model.JobNode, error) {
	nodes := make(map[string]*model.JobNode)
	stack := []string{root.Path}
	if err := in.inline(root, "", "", nil, stack, nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// inline adds wf's jobs to nodes under prefix. entryNeeds are the
// caller-side predecessors wired onto jobs that have no needs of their
// own; stack tracks the uses chain for indirect-recursion detection.
func (in *Inliner) inline(wf *model.Workflow, prefix, scope string, entryNeeds []string, stack []string, nodes map[string]*model.JobNode) error {
	for i := range wf.Jobs {
		job := wf.Jobs[i]
		nodeID := qualify(prefix, job.ID)

		for _, need := range job.Needs {
			if wf.Job(need) == nil {
				return &model.InvalidReferenceError{Job: nodeID, Ref: need, Workflow: wf.Path}
			}
		}

		needs := qualifyAll(prefix, job.Needs)
		if len(needs) == 0 {
			needs = entryNeeds
		}

		if job.Uses == "" {
			nodes[nodeID] = &model.JobNode{
				ID:       nodeID,
				Kind:     model.KindStep,
				Job:      job,
				Workflow: wf.Path,
				Scope:    scope,
				Needs:    needs,
			}
			continue
		}

		if err := in.inlineCall(wf, job, nodeID, scope, needs, stack, nodes); err != nil {
			return err
		}
	}
	return nil
}

func (in *Inliner) inlineCall(wf *model.Workflow, job model.Job, nodeID, scope string, needs []string, stack []string, nodes map[string]*model.JobNode) error {
	for i, seen := range stack {
		if seen == job.Uses {
			return &model.CyclicDependencyError{Cycle: append(append([]string{}, stack[i:]...), job.Uses)}
		}
	}

	callee, err := in.resolver.Resolve(job.Uses)
	if err != nil {
		return &model.UnresolvedReferenceError{Job: nodeID, Ref: job.Uses, Err: err}
	}
	if !callee.Callable() {
		return &model.UnresolvedReferenceError{
			Job: nodeID,
			Ref: job.Uses,
			Err: fmt.Errorf("workflow %s does not declare a call trigger", callee.Name),
		}
	}

	in.log.WithField("workflow", wf.Name).Debugf("inlining %s as %s", job.Uses, nodeID)

	if err := in.inline(callee, nodeID, nodeID, needs, append(stack, job.Uses), nodes); err != nil {
		return err
	}

	members := make(map[string]bool)
	memberPrefix := nodeID + "/"
	for id := range nodes {
		if strings.HasPrefix(id, memberPrefix) {
			members[id] = true
		}
	}

	// The join waits on the callee's exit jobs: top-level jobs no other
	// top-level job needs.
	needed := make(map[string]bool)
	for i := range callee.Jobs {
		for _, need := range callee.Jobs[i].Needs {
			needed[need] = true
		}
	}
	var exits []string
	for i := range callee.Jobs {
		if !needed[callee.Jobs[i].ID] {
			exits = append(exits, qualify(nodeID, callee.Jobs[i].ID))
		}
	}

	join := job
	join.Steps = nil
	nodes[nodeID] = &model.JobNode{
		ID:       nodeID,
		Kind:     model.KindCall,
		Job:      join,
		Workflow: wf.Path,
		Scope:    scope,
		Needs:    exits,
		Members:  members,
	}
	return nil
}

func qualify(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "/" + id
}

func qualifyAll(prefix string, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = qualify(prefix, id)
	}
	return out
}
