package core

import "fmt"

// ValidationError reports a bad enum value or missing required field. The
// operation is aborted before any state is written.
type ValidationError struct {
	Field   string
	Value   string
	Allowed string
}

func (e *ValidationError) Error() string {
	if e.Allowed != "" {
		return fmt.Sprintf("invalid %s %q, must be one of: %s", e.Field, e.Value, e.Allowed)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// NotFoundError reports an unknown task, sprint, or workflow id. The
// operation is aborted with no side effects.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// CollaboratorError reports a failed external call (research API, container
// runtime, filesystem). It is caught at the call site and recorded; it does
// not abort the enclosing phase unless the phase's sole purpose was that call.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// PipelinePhaseError reports an unexpected failure inside a workflow phase.
// The orchestrator catches it at the workflow level, marks the workflow
// failed, and synthesizes a compensating task.
type PipelinePhaseError struct {
	Workflow string
	Phase    string
	Err      error
}

func (e *PipelinePhaseError) Error() string {
	return fmt.Sprintf("workflow %s: phase %s: %v", e.Workflow, e.Phase, e.Err)
}

func (e *PipelinePhaseError) Unwrap() error { return e.Err }
