package expand

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sourceplane/flowgate/internal/logger"
	"github.com/sourceplane/flowgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]*model.Workflow

func (m mapResolver) Resolve(ref string) (*model.Workflow, error) {
	if wf, ok := m[ref]; ok {
		return wf, nil
	}
	return nil, &model.NotFoundError{Ref: ref}
}

func newTestInliner(workflows mapResolver) *Inliner {
	return NewInliner(workflows, logger.Init("error", "test"))
}

func step(run string) []model.Step {
	return []model.Step{{Run: run}}
}

func TestInlineFlatWorkflow(t *testing.T) {
	root := &model.Workflow{
		Name: "ci",
		Path: "ci.yaml",
		Jobs: []model.Job{
			{ID: "build", Steps: step("make build")},
			{ID: "test", Needs: []string{"build"}, Steps: step("make test")},
		},
	}

	nodes, err := newTestInliner(nil).Inline(root)
	require.NoError(t, err)

	require.Len(t, nodes, 2)
	assert.Equal(t, model.KindStep, nodes["build"].Kind)
	assert.Empty(t, nodes["build"].Needs)
	assert.Equal(t, []string{"build"}, nodes["test"].Needs)
	assert.Equal(t, "", nodes["test"].Scope)
}

func TestInlineCallWorkflow(t *testing.T) {
	shared := &model.Workflow{
		Name: "integration-suite",
		Path: "shared/suite.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{
			{ID: "a", Steps: step("run a")},
			{ID: "b", Needs: []string{"a"}, Steps: step("run b")},
		},
	}
	root := &model.Workflow{
		Name: "pipeline",
		Path: "pipeline.yaml",
		Jobs: []model.Job{
			{ID: "build", Steps: step("make build")},
			{ID: "integration", Uses: "shared/suite.yaml", Needs: []string{"build"}},
			{ID: "deploy", Needs: []string{"integration"}, Steps: step("make deploy")},
		},
	}

	nodes, err := newTestInliner(mapResolver{"shared/suite.yaml": shared}).Inline(root)
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	// Callee entry jobs inherit the call-job's predecessors.
	assert.Equal(t, []string{"build"}, nodes["integration/a"].Needs)
	assert.Equal(t, []string{"integration/a"}, nodes["integration/b"].Needs)
	assert.Equal(t, "integration", nodes["integration/a"].Scope)

	// The call-job survives as a join node gated on the callee's exits.
	join := nodes["integration"]
	assert.Equal(t, model.KindCall, join.Kind)
	assert.Equal(t, []string{"integration/b"}, join.Needs)
	assert.Equal(t, map[string]bool{
		"integration/a": true,
		"integration/b": true,
	}, join.Members)
	assert.Empty(t, join.Job.Steps)

	assert.Equal(t, []string{"integration"}, nodes["deploy"].Needs)
}

func TestInlineNestedCalls(t *testing.T) {
	inner := &model.Workflow{
		Name: "inner",
		Path: "inner.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{{ID: "leaf", Steps: step("run leaf")}},
	}
	outer := &model.Workflow{
		Name: "outer",
		Path: "outer.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{{ID: "mid", Uses: "inner.yaml"}},
	}
	root := &model.Workflow{
		Name: "root",
		Path: "root.yaml",
		Jobs: []model.Job{
			{ID: "start", Steps: step("start")},
			{ID: "call", Uses: "outer.yaml", Needs: []string{"start"}},
		},
	}

	nodes, err := newTestInliner(mapResolver{"inner.yaml": inner, "outer.yaml": outer}).Inline(root)
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	assert.Equal(t, []string{"start"}, nodes["call/mid/leaf"].Needs)
	assert.Equal(t, model.KindCall, nodes["call/mid"].Kind)
	assert.Equal(t, []string{"call/mid/leaf"}, nodes["call/mid"].Needs)

	outerJoin := nodes["call"]
	assert.Equal(t, []string{"call/mid"}, outerJoin.Needs)
	assert.Equal(t, map[string]bool{
		"call/mid":      true,
		"call/mid/leaf": true,
	}, outerJoin.Members)
}

func TestInlineIsDeterministic(t *testing.T) {
	shared := &model.Workflow{
		Name: "suite",
		Path: "suite.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{{ID: "a", Steps: step("run a")}},
	}
	root := &model.Workflow{
		Name: "pipeline",
		Path: "pipeline.yaml",
		Jobs: []model.Job{{ID: "integration", Uses: "suite.yaml"}},
	}
	in := newTestInliner(mapResolver{"suite.yaml": shared})

	first, err := in.Inline(root)
	require.NoError(t, err)
	second, err := in.Inline(root)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestInlineNotCallable(t *testing.T) {
	plain := &model.Workflow{
		Name: "plain",
		Path: "plain.yaml",
		Jobs: []model.Job{{ID: "a", Steps: step("run a")}},
	}
	root := &model.Workflow{
		Name: "root",
		Path: "root.yaml",
		Jobs: []model.Job{{ID: "call", Uses: "plain.yaml"}},
	}

	_, err := newTestInliner(mapResolver{"plain.yaml": plain}).Inline(root)
	var unresolved *model.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "call", unresolved.Job)
	assert.Contains(t, err.Error(), "call trigger")
}

func TestInlineMissingWorkflow(t *testing.T) {
	root := &model.Workflow{
		Name: "root",
		Path: "root.yaml",
		Jobs: []model.Job{{ID: "call", Uses: "missing.yaml"}},
	}

	_, err := newTestInliner(nil).Inline(root)
	var unresolved *model.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)

	var notFound *model.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestInlineRecursiveUses(t *testing.T) {
	a := &model.Workflow{
		Name: "a",
		Path: "a.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{{ID: "go", Uses: "b.yaml"}},
	}
	b := &model.Workflow{
		Name: "b",
		Path: "b.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{{ID: "back", Uses: "a.yaml"}},
	}
	root := &model.Workflow{
		Name: "root",
		Path: "root.yaml",
		Jobs: []model.Job{{ID: "call", Uses: "a.yaml"}},
	}

	_, err := newTestInliner(mapResolver{"a.yaml": a, "b.yaml": b}).Inline(root)
	var cyclic *model.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	assert.Contains(t, cyclic.Cycle, "a.yaml")
	assert.Contains(t, cyclic.Cycle, "b.yaml")
}

func TestInlineSelfRecursion(t *testing.T) {
	self := &model.Workflow{
		Name: "self",
		Path: "self.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{{ID: "again", Uses: "self.yaml"}},
	}
	root := &model.Workflow{
		Name: "root",
		Path: "root.yaml",
		Jobs: []model.Job{{ID: "call", Uses: "self.yaml"}},
	}

	_, err := newTestInliner(mapResolver{"self.yaml": self}).Inline(root)
	var cyclic *model.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
}

func TestInlineUnknownNeed(t *testing.T) {
	root := &model.Workflow{
		Name: "root",
		Path: "root.yaml",
		Jobs: []model.Job{
			{ID: "deploy", Needs: []string{"ghost"}, Steps: step("deploy")},
		},
	}

	_, err := newTestInliner(nil).Inline(root)
	var invalid *model.InvalidReferenceError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "deploy", invalid.Job)
	assert.Equal(t, "ghost", invalid.Ref)
}
