package render

import (
	"testing"

	"github.com/sourceplane/flowgate/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestGraphViewerView(t *testing.T) {
	g := &model.Graph{
		Root: "pipeline.yaml",
		Nodes: map[string]*model.JobNode{
			"build": {
				ID:   "build",
				Kind: model.KindStep,
				Job: model.Job{
					ID:    "build",
					Steps: []model.Step{{Name: "compile", Run: "make build"}},
				},
				Permissions: model.PermissionSet{"contents": model.AccessRead},
			},
			"integration": {
				ID:    "integration",
				Kind:  model.KindCall,
				Job:   model.Job{ID: "integration", Uses: "suite.yaml"},
				Needs: []string{"integration/a"},
			},
			"integration/a": {
				ID:    "integration/a",
				Kind:  model.KindStep,
				Job:   model.Job{ID: "a", Steps: []model.Step{{Run: "run a"}}},
				Scope: "integration",
				Needs: []string{"build"},
			},
		},
	}

	out := NewGraphViewer(g).View()

	assert.Contains(t, out, "pipeline.yaml")
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "[call suite.yaml]")
	assert.Contains(t, out, "(needs) integration/a")
	assert.Contains(t, out, "permissions: contents:read")
	assert.Contains(t, out, "compile | make build")
	assert.Contains(t, out, "Summary: 3 jobs")
}

func TestGraphViewerEmpty(t *testing.T) {
	out := NewGraphViewer(&model.Graph{Root: "empty.yaml"}).View()
	assert.Equal(t, "No jobs in graph", out)
}
