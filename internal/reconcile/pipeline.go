package reconcile

import (
	"context"
	"io"
	"log/slog"

	"github.com/endocode/timy/internal/redmine"
	"github.com/endocode/timy/internal/source"
)

// Pipeline streams events through filter, resolver, builder and gate in
// event order. Strictly sequential: submission order must match the
// source's natural order and the confirmation prompt serializes
// operator attention. Out-of-scope events are dropped silently.
type Pipeline struct {
	Source   source.Source
	Scope    Scope
	Resolver *Resolver
	Gate     *Gate
	Out      io.Writer
	Logger   *slog.Logger
}

func (p *Pipeline) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return p.Source.Stream(ctx, func(ev source.RawEvent) error {
		if !p.Scope.InScope(ev) {
			logger.Debug("event out of scope", "event_id", ev.EventID)
			return nil
		}

		project, err := p.Resolver.Project(ctx, ev.TaskID)
		if err != nil {
			return err
		}
		activityID, err := p.Resolver.ActivityID(ev.TaskID)
		if err != nil {
			return err
		}
		activityName, err := p.Resolver.ActivityName(ctx, activityID)
		if err != nil {
			return err
		}

		var issue *redmine.Issue
		if issueID, ok := p.Resolver.IssueID(ev.TaskID); ok {
			issue, err = p.Resolver.Issue(ctx, issueID)
			if err != nil {
				return err
			}
		}

		entry, err := BuildEntry(ev, project, activityID, activityName, issue)
		if err != nil {
			return err
		}
		entry.WriteReport(p.Out)

		outcome, err := p.Gate.Submit(ctx, entry)
		if err != nil {
			return err
		}
		logger.Debug("event processed", "event_id", ev.EventID, "outcome", int(outcome))
		return nil
	})
}
