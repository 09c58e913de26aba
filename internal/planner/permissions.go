package planner

import "github.com/sourceplane/flowgate/internal/model"

// scopePermissions computes the effective permission set of every node:
// the job's explicit grant clipped to its caller's effective set, the
// root default for root-scope jobs, inherited when no grant is declared.
// A grant exceeding the caller's set fails the build outright; grants
// are never silently clipped past what the caller could give.
func scopePermissions(g *model.Graph, rootDefault model.PermissionSet) error {
	effective := make(map[string]model.PermissionSet, len(g.Nodes))

	var resolve func(n *model.JobNode) (model.PermissionSet, error)
	resolve = func(n *model.JobNode) (model.PermissionSet, error) {
		if eff, ok := effective[n.ID]; ok {
			return eff, nil
		}

		caller := rootDefault
		if n.Scope != "" {
			var err error
			caller, err = resolve(g.Nodes[n.Scope])
			if err != nil {
				return nil, err
			}
		}

		var eff model.PermissionSet
		grant := n.Job.Permissions
		if grant == nil {
			eff = caller.Clone()
		} else {
			if over := grant.Exceeding(caller); len(over) > 0 {
				return nil, &model.PermissionEscalationError{Job: n.ID, Scopes: over}
			}
			eff = grant.Intersect(caller)
		}

		effective[n.ID] = eff
		n.Permissions = eff
		return eff, nil
	}

	for _, id := range g.NodeIDs() {
		if _, err := resolve(g.Nodes[id]); err != nil {
			return err
		}
	}
	return nil
}
