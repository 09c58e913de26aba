package model

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed workflow document. A content problem,
// distinct from a reference problem (NotFoundError).
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse workflow %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError reports a workflow lookup that resolved to nothing.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workflow not found: %s", e.Ref)
}

// UnresolvedReferenceError reports a uses reference that cannot be
// satisfied: the target is missing or not callable.
type UnresolvedReferenceError struct {
	Job string
	Ref string
	Err error
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("job %s: cannot use %s: %v", e.Job, e.Ref, e.Err)
}

func (e *UnresolvedReferenceError) Unwrap() error { return e.Err }

// InvalidReferenceError reports a needs declaration naming a job that
// does not exist in the declaring workflow's scope.
type InvalidReferenceError struct {
	Job      string
	Ref      string
	Workflow string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("job %s: needs %q which does not exist in %s", e.Job, e.Ref, e.Workflow)
}

// CyclicDependencyError names the cycle that prevented a graph build,
// whether between jobs (needs) or between workflows (uses).
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Cycle, " -> "))
}

// PermissionEscalationError reports a job grant requesting capabilities
// absent from its caller's effective permission set. Raised at build
// time so a misconfigured pipeline never starts.
type PermissionEscalationError struct {
	Job    string
	Scopes []string
}

func (e *PermissionEscalationError) Error() string {
	return fmt.Sprintf("job %s: permission grant exceeds caller for scopes %s", e.Job, strings.Join(e.Scopes, ", "))
}
