package reconcile

import "fmt"

type MappingKind string

const (
	MappingProject  MappingKind = "project"
	MappingActivity MappingKind = "activity"
)

// MappingNotFoundError reports a task id with no entry in the static
// project or activity mapping. Both kinds are fatal for the run: a
// silently skipped billable event is worse than a halted run.
type MappingNotFoundError struct {
	Kind   MappingKind
	TaskID int
}

func (e *MappingNotFoundError) Error() string {
	return fmt.Sprintf("no %s mapping for task %d", e.Kind, e.TaskID)
}

// UnresolvableIssueError reports an issue id present in the mapping but
// unknown to the remote service.
type UnresolvableIssueError struct {
	IssueID int
	Err     error
}

func (e *UnresolvableIssueError) Error() string {
	return fmt.Sprintf("invalid issue id %d", e.IssueID)
}

func (e *UnresolvableIssueError) Unwrap() error { return e.Err }
