package reconcile

import (
	"context"
	"errors"
	"strconv"

	"github.com/endocode/timy/internal/config"
	"github.com/endocode/timy/internal/redmine"
)

// Service is the slice of the remote API the pipeline needs. The
// redmine client satisfies it; tests use a fake.
type Service interface {
	Project(ctx context.Context, idOrKey string) (*redmine.Project, error)
	Issue(ctx context.Context, id int) (*redmine.Issue, error)
	TimeEntryActivities(ctx context.Context) ([]redmine.Activity, error)
	CreateTimeEntry(ctx context.Context, entry redmine.NewTimeEntry) (*redmine.TimeEntry, error)
}

// Resolver translates task ids into remote resources via the static
// mapping configuration. Project metadata is fetched once per distinct
// task id and the activity enumeration once per run; both caches live
// only for the lifetime of the resolver.
type Resolver struct {
	cfg *config.Config
	svc Service

	projects   map[int]*redmine.Project
	activities map[int]string
}

func NewResolver(cfg *config.Config, svc Service) *Resolver {
	return &Resolver{
		cfg:      cfg,
		svc:      svc,
		projects: make(map[int]*redmine.Project),
	}
}

func (r *Resolver) Project(ctx context.Context, taskID int) (*redmine.Project, error) {
	if p, ok := r.projects[taskID]; ok {
		return p, nil
	}

	key, ok := r.cfg.TaskProjectMapping[strconv.Itoa(taskID)]
	if !ok {
		return nil, &MappingNotFoundError{Kind: MappingProject, TaskID: taskID}
	}

	p, err := r.svc.Project(ctx, key)
	if err != nil {
		return nil, err
	}
	r.projects[taskID] = p
	return p, nil
}

func (r *Resolver) ActivityID(taskID int) (int, error) {
	id, ok := r.cfg.TaskActivityMapping[strconv.Itoa(taskID)]
	if !ok {
		return 0, &MappingNotFoundError{Kind: MappingActivity, TaskID: taskID}
	}
	return id, nil
}

// ActivityName resolves an activity id against the enumeration fetched
// from the service. Unknown ids fall back to the numeric form.
func (r *Resolver) ActivityName(ctx context.Context, id int) (string, error) {
	if r.activities == nil {
		activities, err := r.svc.TimeEntryActivities(ctx)
		if err != nil {
			return "", err
		}
		r.activities = make(map[int]string, len(activities))
		for _, a := range activities {
			r.activities[a.ID] = a.Name
		}
	}
	if name, ok := r.activities[id]; ok {
		return name, nil
	}
	return strconv.Itoa(id), nil
}

// IssueID returns the mapped issue id for a task, if any. Issue linkage
// is optional: a missing mapping is not an error.
func (r *Resolver) IssueID(taskID int) (int, bool) {
	id, ok := r.cfg.TaskIssueMapping[strconv.Itoa(taskID)]
	return id, ok
}

// Issue fetches a mapped issue. An id the service does not know is an
// UnresolvableIssueError, which is fatal for the run.
func (r *Resolver) Issue(ctx context.Context, id int) (*redmine.Issue, error) {
	issue, err := r.svc.Issue(ctx, id)
	if err != nil {
		if errors.Is(err, redmine.ErrNotFound) {
			return nil, &UnresolvableIssueError{IssueID: id, Err: err}
		}
		return nil, err
	}
	return issue, nil
}
