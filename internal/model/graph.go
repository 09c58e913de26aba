package model

import "sort"

// NodeKind distinguishes ordinary step jobs from the synthetic join
// nodes that represent a call-job's completion as a unit.
type NodeKind string

const (
	KindStep NodeKind = "step"
	KindCall NodeKind = "call"
)

// JobNode is the materialized form of a Job after call-workflow
// inlining. Owned exclusively by one pipeline run's DAG.
type JobNode struct {
	// ID is the node's qualified identity: the job ID for root-scope
	// jobs, "<call-job>/<job>" for inlined ones.
	ID string

	Kind NodeKind

	// Job is the declaration the node was built from. For call nodes the
	// steps are empty; the node completes when its subgraph does.
	Job Job

	// Workflow is the path of the document that declared the job.
	Workflow string

	// Scope is the ID of the enclosing call node, empty for root scope.
	Scope string

	// Needs holds resolved predecessor node IDs.
	Needs []string

	// Members holds the IDs of all nodes inlined under a call node,
	// including nested ones. Nil for step nodes.
	Members map[string]bool

	// Permissions is the node's effective permission set, fixed at
	// build time by the permission scoper.
	Permissions PermissionSet
}

// Graph is a finalized, acyclic JobNode DAG for one root workflow.
// Built whole or not at all: a failed build returns no graph.
type Graph struct {
	Root  string
	Nodes map[string]*JobNode
}

// NodeIDs returns all node IDs, sorted.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependents returns the successor adjacency: node ID to the IDs of
// nodes that list it in their needs.
func (g *Graph) Dependents() map[string][]string {
	deps := make(map[string][]string, len(g.Nodes))
	for _, id := range g.NodeIDs() {
		for _, need := range g.Nodes[id].Needs {
			deps[need] = append(deps[need], id)
		}
	}
	return deps
}
