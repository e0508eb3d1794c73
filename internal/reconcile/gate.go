package reconcile

import (
	"context"
	"fmt"
	"strings"
)

type Mode int

const (
	// DryRun reports entries without any remote call.
	DryRun Mode = iota
	// AskThenSubmit prompts once per entry before submitting.
	AskThenSubmit
	// SubmitWithoutAsking submits every entry directly.
	SubmitWithoutAsking
)

type Outcome int

const (
	Submitted Outcome = iota
	SkippedDryRun
	SkippedDeclined
)

// Confirmer answers the per-entry submission prompt. The CLI reads the
// answer from stdin; tests supply a scripted one.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

type ConfirmerFunc func(prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Affirmative reports whether a prompt answer means yes.
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Gate decides per entry whether to submit and performs the remote
// create call. A declined prompt skips the entry and the run continues;
// a remote validation failure aborts the whole run, since there is no
// resume mechanism finer than the start event id.
type Gate struct {
	Svc     Service
	Mode    Mode
	Confirm Confirmer

	Submitted int
	Skipped   int
}

func (g *Gate) Submit(ctx context.Context, entry *Entry) (Outcome, error) {
	switch g.Mode {
	case DryRun:
		g.Skipped++
		return SkippedDryRun, nil
	case AskThenSubmit:
		ok, err := g.Confirm.Confirm("Submit?")
		if err != nil {
			return SkippedDeclined, fmt.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			g.Skipped++
			return SkippedDeclined, nil
		}
	}

	if _, err := g.Svc.CreateTimeEntry(ctx, entry.Request()); err != nil {
		return SkippedDeclined, fmt.Errorf("could not save time entry #%d: %w", entry.EventID, err)
	}
	g.Submitted++
	return Submitted, nil
}
