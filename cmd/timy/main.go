package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/endocode/timy/internal/balance"
	"github.com/endocode/timy/internal/config"
	"github.com/endocode/timy/internal/reconcile"
	"github.com/endocode/timy/internal/redmine"
	"github.com/endocode/timy/internal/source"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// almostADay widens an inclusive end date to the last second of that day.
const almostADay = 86399 * time.Second

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "timy",
	Short: "Reconcile Charm time-tracking events with Redmine",
	Long:  "timy reads timed events from a Charm XML export or SQLite snapshot, submits them as Redmine time entries via a configured task mapping, and reports worked-hours balances against the contracted workload.",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote resources and time tracks",
}

var listProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Redmine projects",
	RunE:  runListProjects,
}

var listActivitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List time-entry activity ids",
	RunE:  runListActivities,
}

var listUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List Redmine users",
	RunE:  runListUsers,
}

var listTimetracksCmd = &cobra.Command{
	Use:   "timetracks",
	Short: "Show submitted time tracks and the hours balance",
	RunE:  runListTimetracks,
}

var trackXMLCmd = &cobra.Command{
	Use:   "trackxml EXPORTFILE",
	Short: "Submit events from a Charm XML export",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrackXML,
}

var trackDBCmd = &cobra.Command{
	Use:   "trackdb [DBFILE]",
	Short: "Submit events from a Charm SQLite snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTrackDB,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log API traffic to stderr")

	for _, cmd := range []*cobra.Command{trackXMLCmd, trackDBCmd} {
		cmd.Flags().BoolP("submit", "S", false, "Actually create time entries in Redmine")
		cmd.Flags().BoolP("no-ask", "n", false, "Don't ask before submitting a time entry")
		cmd.Flags().Int("starteventid", 1, "Skip events before this event id")
		cmd.Flags().String("startdate", "", "Skip events before this date (YYYY-MM-DD)")
		cmd.Flags().String("enddate", "", "Skip events after this date (YYYY-MM-DD)")
	}

	listTimetracksCmd.Flags().BoolP("verbose", "v", false, "Print one line per time entry")
	listTimetracksCmd.Flags().Bool("sumday", false, "Print per-day subtotals (with --verbose)")
	listTimetracksCmd.Flags().Int("days", 0, "Report the last N days instead of the current month")
	listTimetracksCmd.Flags().String("startdate", "", "Report from this date (YYYY-MM-DD)")
	listTimetracksCmd.Flags().String("enddate", "", "Report up to this date (YYYY-MM-DD)")
	listTimetracksCmd.Flags().Int("user", 0, "Act as this user id instead of the API key's owner")

	listCmd.AddCommand(listProjectsCmd)
	listCmd.AddCommand(listActivitiesCmd)
	listCmd.AddCommand(listUsersCmd)
	listCmd.AddCommand(listTimetracksCmd)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(trackXMLCmd)
	rootCmd.AddCommand(trackDBCmd)

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps each fatal error class to a distinct status so
// scripted callers can tell them apart.
func exitCode(err error) int {
	var mapErr *reconcile.MappingNotFoundError
	if errors.As(err, &mapErr) {
		if mapErr.Kind == reconcile.MappingActivity {
			return 2
		}
		return 1
	}
	var keyErr *config.KeyError
	if errors.As(err, &keyErr) {
		return 3
	}
	var valErr *redmine.ValidationError
	if errors.As(err, &valErr) {
		return 4
	}
	var issueErr *reconcile.UnresolvableIssueError
	if errors.As(err, &issueErr) {
		return 5
	}
	var readErr *source.ReadError
	if errors.As(err, &readErr) {
		return 6
	}
	return 1
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, &config.KeyError{Key: "api_key"}
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	if debugFlag {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(cfg *config.Config) *redmine.Client {
	return redmine.NewClient(cfg.BaseURL, cfg.APIKey, newLogger())
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("bad date %q (want YYYY-MM-DD): %w", s, err)
	}
	return &t, nil
}

// stdinConfirmer blocks on operator input; an unanswered prompt blocks
// indefinitely, which is acceptable for an interactive tool.
type stdinConfirmer struct {
	in *bufio.Reader
}

func (c *stdinConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Print(prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return false, err
	}
	return reconcile.Affirmative(line), nil
}

type trackOptions struct {
	submit       bool
	noAsk        bool
	startEventID int
	startDate    *time.Time
	endDate      *time.Time
}

func trackOptionsFromFlags(cmd *cobra.Command) (*trackOptions, error) {
	opts := &trackOptions{}
	opts.submit, _ = cmd.Flags().GetBool("submit")
	opts.noAsk, _ = cmd.Flags().GetBool("no-ask")
	opts.startEventID, _ = cmd.Flags().GetInt("starteventid")

	startStr, _ := cmd.Flags().GetString("startdate")
	endStr, _ := cmd.Flags().GetString("enddate")

	var err error
	if opts.startDate, err = parseDate(startStr); err != nil {
		return nil, err
	}
	if opts.endDate, err = parseDate(endStr); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *trackOptions) mode() reconcile.Mode {
	switch {
	case !o.submit:
		return reconcile.DryRun
	case o.noAsk:
		return reconcile.SubmitWithoutAsking
	default:
		return reconcile.AskThenSubmit
	}
}

func runPipeline(cfg *config.Config, src source.Source, opts *trackOptions) error {
	client := newClient(cfg)

	gate := &reconcile.Gate{
		Svc:     client,
		Mode:    opts.mode(),
		Confirm: &stdinConfirmer{in: bufio.NewReader(os.Stdin)},
	}

	pipeline := &reconcile.Pipeline{
		Source:   src,
		Scope:    reconcile.Scope{StartEventID: opts.startEventID, StartDate: opts.startDate, EndDate: opts.endDate},
		Resolver: reconcile.NewResolver(cfg, client),
		Gate:     gate,
		Out:      os.Stdout,
		Logger:   newLogger(),
	}

	return pipeline.Run(context.Background())
}

func runTrackXML(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := trackOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	if opts.endDate != nil {
		// --enddate is inclusive of that whole day.
		widened := opts.endDate.Add(almostADay)
		opts.endDate = &widened
	}

	return runPipeline(cfg, source.NewXMLSource(args[0]), opts)
}

func runTrackDB(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := trackOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	if opts.endDate != nil {
		widened := opts.endDate.AddDate(0, 0, 1)
		opts.endDate = &widened
	}

	dbPath := cfg.DBPath
	if len(args) == 1 {
		dbPath = args[0]
	}
	if dbPath == "" {
		return &config.KeyError{Key: "db_path"}
	}

	src := source.NewDBSource(dbPath, opts.startEventID, opts.startDate, opts.endDate)
	return runPipeline(cfg, src, opts)
}

func runListTimetracks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	sumDay, _ := cmd.Flags().GetBool("sumday")
	days, _ := cmd.Flags().GetInt("days")
	userID, _ := cmd.Flags().GetInt("user")
	startStr, _ := cmd.Flags().GetString("startdate")
	endStr, _ := cmd.Flags().GetString("enddate")

	var start time.Time
	now := time.Now()
	switch {
	case days > 0:
		start = now.AddDate(0, 0, -days)
	case startStr != "":
		t, err := parseDate(startStr)
		if err != nil {
			return err
		}
		start = *t
	default:
		// Current month by default.
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}

	end, err := parseDate(endStr)
	if err != nil {
		return err
	}

	reporter := &balance.Reporter{
		Svc:           newClient(cfg),
		Out:           os.Stdout,
		ContractHours: cfg.ContractHours,
		Verbose:       verbose,
		SumDay:        sumDay,
	}
	return reporter.Run(context.Background(), userID, start, end)
}

func runListProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projects, err := newClient(cfg).Projects(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("#Project ID\t-\tProject Name")
	fmt.Println(strings.Repeat("=", 80))
	for _, p := range projects {
		fmt.Printf("#%d\t\t-\t%s\n", p.ID, p.Name)
	}
	return nil
}

func runListActivities(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	activities, err := newClient(cfg).TimeEntryActivities(context.Background())
	if err != nil {
		return err
	}
	for _, a := range activities {
		fmt.Printf("%d %s\n", a.ID, a.Name)
	}
	return nil
}

func runListUsers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	users, err := newClient(cfg).Users(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("#User ID\t-\tName")
	fmt.Println(strings.Repeat("=", 80))
	for _, u := range users {
		fmt.Printf("#%d\t\t-\t%s %s\n", u.ID, u.Firstname, u.Lastname)
	}
	return nil
}
