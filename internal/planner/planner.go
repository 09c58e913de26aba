package planner

import (
	"github.com/sirupsen/logrus"
	"github.com/sourceplane/flowgate/internal/expand"
	"github.com/sourceplane/flowgate/internal/model"
)

// Builder turns a root workflow into a finalized JobNode DAG: uses
// references inlined, needs edges resolved, cycles rejected and
// effective permissions fixed. Build-time failures return no graph, so
// a misconfigured pipeline never reaches the scheduler.
type Builder struct {
	inliner *expand.Inliner
	log     *logrus.Entry
}

// NewBuilder creates a builder using resolver for uses references.
func NewBuilder(resolver expand.Resolver, log *logrus.Entry) *Builder {
	return &Builder{
		inliner: expand.NewInliner(resolver, log),
		log:     log,
	}
}

// Build constructs the graph for one run of root.
func (b *Builder) Build(root *model.Workflow) (*model.Graph, error) {
	nodes, err := b.inliner.Inline(root)
	if err != nil {
		return nil, err
	}

	g := &model.Graph{Root: root.Path, Nodes: nodes}

	if err := detectCycles(g); err != nil {
		return nil, err
	}
	if err := scopePermissions(g, root.Permissions); err != nil {
		return nil, err
	}

	b.log.WithField("workflow", root.Name).Debugf("built graph with %d nodes", len(nodes))
	return g, nil
}
