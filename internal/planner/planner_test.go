package planner

import (
	"testing"

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

func newTestBuilder(workflows mapResolver) *Builder {
	return NewBuilder(workflows, logger.Init("error", "test"))
}

func step(run string) []model.Step {
	return []model.Step{{Run: run}}
}

func TestBuildLinearGraph(t *testing.T) {
	root := &model.Workflow{
		Name:        "ci",
		Path:        "ci.yaml",
		Permissions: model.DefaultPermissions(),
		Jobs: []model.Job{
			{ID: "build", Steps: step("make build")},
			{ID: "test", Needs: []string{"build"}, Steps: step("make test")},
		},
	}

	g, err := newTestBuilder(nil).Build(root)
	require.NoError(t, err)

	assert.Equal(t, "ci.yaml", g.Root)
	assert.Equal(t, []string{"build", "test"}, g.NodeIDs())
	assert.Equal(t, map[string][]string{"build": {"test"}}, g.Dependents())
}

func TestBuildRejectsNeedsCycle(t *testing.T) {
	root := &model.Workflow{
		Name:        "ci",
		Path:        "ci.yaml",
		Permissions: model.DefaultPermissions(),
		Jobs: []model.Job{
			{ID: "a", Needs: []string{"c"}, Steps: step("a")},
			{ID: "b", Needs: []string{"a"}, Steps: step("b")},
			{ID: "c", Needs: []string{"b"}, Steps: step("c")},
		},
	}

	_, err := newTestBuilder(nil).Build(root)
	var cyclic *model.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)

	// The cycle is named end to end.
	require.GreaterOrEqual(t, len(cyclic.Cycle), 4)
	assert.Equal(t, cyclic.Cycle[0], cyclic.Cycle[len(cyclic.Cycle)-1])
}

func TestBuildPermissionInheritance(t *testing.T) {
	shared := &model.Workflow{
		Name: "suite",
		Path: "suite.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{
			{ID: "a", Steps: step("a")},
			{ID: "b", Permissions: model.PermissionSet{"contents": model.AccessRead}, Steps: step("b")},
		},
	}
	root := &model.Workflow{
		Name: "pipeline",
		Path: "pipeline.yaml",
		Permissions: model.PermissionSet{
			"contents": model.AccessWrite,
			"packages": model.AccessRead,
		},
		Jobs: []model.Job{
			{ID: "build", Steps: step("build")},
			{
				ID:          "integration",
				Uses:        "suite.yaml",
				Permissions: model.PermissionSet{"contents": model.AccessWrite},
			},
		},
	}

	g, err := newTestBuilder(mapResolver{"suite.yaml": shared}).Build(root)
	require.NoError(t, err)

	// No grant inherits the caller's effective set.
	assert.Equal(t, root.Permissions, g.Nodes["build"].Permissions)

	// The call-job's grant scopes every member.
	join := model.PermissionSet{"contents": model.AccessWrite}
	assert.Equal(t, join, g.Nodes["integration"].Permissions)
	assert.Equal(t, join, g.Nodes["integration/a"].Permissions)
	assert.Equal(t, model.PermissionSet{"contents": model.AccessRead}, g.Nodes["integration/b"].Permissions)
}

func TestBuildRejectsEscalation(t *testing.T) {
	shared := &model.Workflow{
		Name: "suite",
		Path: "suite.yaml",
		On:   model.Triggers{Call: true},
		Jobs: []model.Job{
			{
				ID:          "a",
				Permissions: model.PermissionSet{"contents": model.AccessWrite},
				Steps:       step("a"),
			},
		},
	}
	root := &model.Workflow{
		Name:        "pipeline",
		Path:        "pipeline.yaml",
		Permissions: model.PermissionSet{"contents": model.AccessRead},
		Jobs: []model.Job{
			{ID: "integration", Uses: "suite.yaml"},
		},
	}

	_, err := newTestBuilder(mapResolver{"suite.yaml": shared}).Build(root)
	var escalation *model.PermissionEscalationError
	require.ErrorAs(t, err, &escalation)
	assert.Equal(t, "integration/a", escalation.Job)
	assert.Equal(t, []string{"contents"}, escalation.Scopes)
}

func TestBuildRejectsRootEscalation(t *testing.T) {
	root := &model.Workflow{
		Name:        "pipeline",
		Path:        "pipeline.yaml",
		Permissions: model.PermissionSet{"contents": model.AccessRead},
		Jobs: []model.Job{
			{
				ID:          "release",
				Permissions: model.PermissionSet{"packages": model.AccessWrite},
				Steps:       step("release"),
			},
		},
	}

	_, err := newTestBuilder(nil).Build(root)
	var escalation *model.PermissionEscalationError
	require.ErrorAs(t, err, &escalation)
	assert.Equal(t, "release", escalation.Job)
	assert.Equal(t, []string{"packages"}, escalation.Scopes)
}

func TestBuildClipsGrantToCaller(t *testing.T) {
	root := &model.Workflow{
		Name: "pipeline",
		Path: "pipeline.yaml",
		Permissions: model.PermissionSet{
			"contents": model.AccessWrite,
		},
		Jobs: []model.Job{
			{
				ID:          "docs",
				Permissions: model.PermissionSet{"contents": model.AccessRead},
				Steps:       step("docs"),
			},
		},
	}

	g, err := newTestBuilder(nil).Build(root)
	require.NoError(t, err)

	assert.Equal(t, model.PermissionSet{"contents": model.AccessRead}, g.Nodes["docs"].Permissions)
}
