package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants"
	"github.com/sirupsen/logrus"
	"github.com/sourceplane/flowgate/internal/model"
)

// DefaultConcurrency bounds parallel job execution when no limit is set.
const DefaultConcurrency = 4

// Outcome is what a StepExecutor reports back for one job node.
type Outcome struct {
	Status  model.Status
	Outputs map[string]string
}

// StepExecutor runs the steps of a single job node. Implementations must
// honor ctx cancellation and return a terminal status.
type StepExecutor interface {
	Execute(ctx context.Context, node *model.JobNode) (*Outcome, error)
}

// Runner walks a built graph concurrently: a node is dispatched once all
// of its needs have succeeded, a failure cancels the pending nodes
// downstream of it and independent branches keep draining. Running jobs
// are never interrupted by a sibling's failure.
type Runner struct {
	exec        StepExecutor
	concurrency int
	log         *logrus.Entry
}

// New creates a runner executing jobs through exec, at most concurrency
// at a time.
func New(exec StepExecutor, concurrency int, log *logrus.Entry) *Runner {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Runner{exec: exec, concurrency: concurrency, log: log}
}

// Run executes the graph to completion and returns the finished run
// record. Always returns a record: job failures are reported through
// node statuses, not through the error value.
func (r *Runner) Run(ctx context.Context, g *model.Graph) (*model.PipelineRun, error) {
	runID := uuid.New().String()
	log := r.log.WithField("run", runID)

	ex := &execution{
		runner:     r,
		ctx:        ctx,
		log:        log,
		graph:      g,
		dependents: g.Dependents(),
		statuses:   make(map[string]model.Status, len(g.Nodes)),
		waiting:    make(map[string]int, len(g.Nodes)),
		outputs:    make(map[string]map[string]string),
		durations:  make(map[string]time.Duration),
		started:    make(map[string]time.Time),
	}
	for id, n := range g.Nodes {
		ex.statuses[id] = model.StatusPending
		ex.waiting[id] = len(n.Needs)
	}

	pool, err := ants.NewPoolWithFunc(r.concurrency, func(arg interface{}) {
		ex.execute(arg.(*model.JobNode))
	}, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()
	ex.pool = pool

	startedAt := time.Now()
	ex.wg.Add(len(g.Nodes))

	ex.mu.Lock()
	for _, id := range g.NodeIDs() {
		if ex.waiting[id] == 0 {
			ex.dispatch(g.Nodes[id])
		}
	}
	ex.mu.Unlock()

	ex.wg.Wait()

	return &model.PipelineRun{
		ID:         runID,
		Root:       g.Root,
		Statuses:   ex.statuses,
		Outputs:    ex.outputs,
		Durations:  ex.durations,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}, nil
}

// execution is the mutable state of one run. All status transitions
// happen under mu, and every node gets exactly one wg.Done when it
// reaches a terminal state.
type execution struct {
	runner     *Runner
	ctx        context.Context
	log        *logrus.Entry
	graph      *model.Graph
	pool       *ants.PoolWithFunc
	dependents map[string][]string
	wg         sync.WaitGroup

	mu        sync.Mutex
	statuses  map[string]model.Status
	waiting   map[string]int
	outputs   map[string]map[string]string
	durations map[string]time.Duration
	started   map[string]time.Time
}

// dispatch hands a node to the pool without blocking the caller: Invoke
// waits for a free worker, so it runs on its own goroutine.
func (ex *execution) dispatch(n *model.JobNode) {
	go func() {
		if err := ex.pool.Invoke(n); err != nil {
			ex.log.WithError(err).Errorf("failed to dispatch job %s", n.ID)
			ex.mu.Lock()
			ex.finishLocked(n, model.StatusFailed, nil)
			ex.mu.Unlock()
		}
	}()
}

func (ex *execution) execute(n *model.JobNode) {
	ex.mu.Lock()
	if ex.statuses[n.ID] != model.StatusPending {
		ex.mu.Unlock()
		return
	}
	if ex.ctx.Err() != nil {
		ex.finishLocked(n, model.StatusCancelled, nil)
		ex.mu.Unlock()
		return
	}
	if n.Job.If == model.CondNever {
		ex.log.Infof("skipping job %s", n.ID)
		ex.finishLocked(n, model.StatusSkipped, nil)
		ex.mu.Unlock()
		return
	}
	if n.Kind == model.KindCall {
		// Join node: the callee subgraph succeeded. Its outputs are the
		// merged outputs of the callee's exit jobs.
		outs := make(map[string]string)
		for _, need := range n.Needs {
			for k, v := range ex.outputs[need] {
				outs[k] = v
			}
		}
		ex.finishLocked(n, model.StatusSucceeded, outs)
		ex.mu.Unlock()
		return
	}
	ex.statuses[n.ID] = model.StatusRunning
	ex.started[n.ID] = time.Now()
	ex.mu.Unlock()

	ex.log.Infof("running job %s", n.ID)

	ctx := ex.ctx
	if n.Job.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Job.TimeoutDuration)
		defer cancel()
	}

	status := model.StatusFailed
	var outs map[string]string
	outcome, err := ex.runner.exec.Execute(ctx, n)
	switch {
	case err != nil:
		ex.log.WithError(err).Errorf("job %s failed", n.ID)
	case outcome != nil && outcome.Status == model.StatusSucceeded:
		status = model.StatusSucceeded
		outs = outcome.Outputs
	}

	ex.mu.Lock()
	ex.finishLocked(n, status, outs)
	ex.mu.Unlock()
}

// finishLocked records a node's terminal state and advances the graph:
// success unblocks dependents, anything else cascades through the
// pending downstream set. Later transitions on a terminal node are
// ignored.
func (ex *execution) finishLocked(n *model.JobNode, status model.Status, outs map[string]string) {
	if ex.statuses[n.ID].Terminal() {
		return
	}
	ex.statuses[n.ID] = status
	if start, ok := ex.started[n.ID]; ok {
		ex.durations[n.ID] = time.Since(start)
	}
	if status == model.StatusSucceeded && len(outs) > 0 {
		ex.outputs[n.ID] = outs
	}
	ex.wg.Done()

	if status == model.StatusSucceeded {
		for _, depID := range ex.dependents[n.ID] {
			ex.waiting[depID]--
			if ex.waiting[depID] == 0 && ex.statuses[depID] == model.StatusPending {
				ex.dispatch(ex.graph.Nodes[depID])
			}
		}
		return
	}
	ex.cascadeLocked(n)
}

// cascadeLocked settles the pending nodes downstream of a node that did
// not succeed. Dependents become cancelled, except a join node whose
// member set contains a failure: the call-job failed as a unit, so the
// join reports failed and keeps propagating as one.
func (ex *execution) cascadeLocked(src *model.JobNode) {
	for _, depID := range ex.dependents[src.ID] {
		if ex.statuses[depID] != model.StatusPending {
			continue
		}
		dep := ex.graph.Nodes[depID]
		status := model.StatusCancelled
		if dep.Kind == model.KindCall && ex.memberFailedLocked(dep) {
			status = model.StatusFailed
		}
		ex.statuses[depID] = status
		ex.wg.Done()
		ex.log.Infof("job %s %s", depID, status)
		ex.cascadeLocked(dep)
	}
}

func (ex *execution) memberFailedLocked(n *model.JobNode) bool {
	for id := range n.Members {
		if ex.statuses[id] == model.StatusFailed {
			return true
		}
	}
	return false
}
