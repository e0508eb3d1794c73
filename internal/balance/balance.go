package balance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/endocode/timy/internal/redmine"
)

const dateLayout = "2006-01-02"

// Service is the read-only slice of the remote API the reporter needs.
type Service interface {
	CurrentUser(ctx context.Context) (*redmine.User, error)
	UserByID(ctx context.Context, id int) (*redmine.User, error)
	TimeEntries(ctx context.Context, userID int, from, to string) ([]redmine.TimeEntry, error)
}

// Reporter sums submitted hours for a user over a date range and
// reports the signed balance against the contracted workload.
type Reporter struct {
	Svc           Service
	Out           io.Writer
	ContractHours float64
	Verbose       bool
	SumDay        bool
}

// Run reports the balance for one user. userID zero means the user
// owning the API key. A nil end date means today. An empty result is
// reported and the reporter returns without a balance line.
func (r *Reporter) Run(ctx context.Context, userID int, start time.Time, end *time.Time) error {
	var (
		user *redmine.User
		err  error
	)
	if userID == 0 {
		user, err = r.Svc.CurrentUser(ctx)
	} else {
		user, err = r.Svc.UserByID(ctx, userID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Time tracks for user %s %s\n", user.Firstname, user.Lastname)

	from := start.Format(dateLayout)
	to := ""
	if end != nil {
		to = end.Format(dateLayout)
	}

	entries, err := r.Svc.TimeEntries(ctx, user.ID, from, to)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		endLabel := "today"
		if to != "" {
			endLabel = to
		}
		fmt.Fprintf(r.Out, "Unable to retrieve time tracks from %s to %s\n", from, endLabel)
		return nil
	}

	var (
		total      float64
		dayHours   float64
		currentDay = entries[0].SpentOn
	)
	for _, te := range entries {
		// spent_on is YYYY-MM-DD, so string order is date order.
		if r.Verbose && r.SumDay && te.SpentOn > currentDay {
			fmt.Fprintf(r.Out, "%s totals %.2f hours\n\n", currentDay, dayHours)
			currentDay = te.SpentOn
			dayHours = 0
		}

		total += te.Hours
		if r.SumDay {
			dayHours += te.Hours
		}
		if r.Verbose {
			fmt.Fprintf(r.Out, "%s spent %v %s hours on %s - %s\n", te.SpentOn, te.Hours, te.Activity.Name, te.Project.Name, te.Comments)
		}
	}
	if r.Verbose && dayHours > 0 {
		fmt.Fprintf(r.Out, "%s totals %.2f hours\n\n", currentDay, dayHours)
	}

	toDay := time.Now()
	if end != nil {
		toDay = *end
	}

	workDays := BusinessDays(start, toDay)
	required := float64(workDays) * (r.ContractHours / 5)
	if r.Verbose {
		fmt.Fprintf(r.Out, "total %.2f hours / required %v hours\n", total, required)
	}
	fmt.Fprintf(r.Out, "balance: %.2f hours (since: %s # working days: %d)\n", total-required, from, workDays)
	return nil
}
