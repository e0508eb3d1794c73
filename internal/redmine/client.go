package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const pageSize = 100

// ErrNotFound reports that a requested resource does not exist remotely.
var ErrNotFound = errors.New("resource not found")

// ValidationError carries the messages the service returns when it
// rejects a create request (HTTP 422).
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("X-Redmine-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("redmine API request", "method", method, "path", path)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API request transport error", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("redmine API response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var payload struct {
			Errors []string `json:"errors"`
		}
		if err := json.Unmarshal(respBody, &payload); err != nil || len(payload.Errors) == 0 {
			payload.Errors = []string{truncate(string(respBody), 200)}
		}
		return nil, &ValidationError{Messages: payload.Errors}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error("API request failed", "method", method, "path", path, "status", resp.StatusCode, "response", truncate(string(respBody), 200))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return respBody, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// CurrentUser returns the user owning the API key.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return c.user(ctx, "current")
}

func (c *Client) UserByID(ctx context.Context, id int) (*User, error) {
	return c.user(ctx, fmt.Sprintf("%d", id))
}

func (c *Client) user(ctx context.Context, ref string) (*User, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/users/"+ref+".json", nil)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", ref, err)
	}

	var payload struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}
	return &payload.User, nil
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var all []User
	offset := 0
	for {
		path := fmt.Sprintf("/users.json?offset=%d&limit=%d", offset, pageSize)
		data, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}

		var payload struct {
			Users []User `json:"users"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parsing users response: %w", err)
		}

		all = append(all, payload.Users...)
		if len(payload.Users) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}

// Project fetches one project by numeric id or string identifier.
func (c *Client) Project(ctx context.Context, idOrKey string) (*Project, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/projects/"+url.PathEscape(idOrKey)+".json", nil)
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", idOrKey, err)
	}

	var payload struct {
		Project Project `json:"project"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing project response: %w", err)
	}
	return &payload.Project, nil
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var all []Project
	offset := 0
	for {
		path := fmt.Sprintf("/projects.json?offset=%d&limit=%d", offset, pageSize)
		data, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}

		var payload struct {
			Projects []Project `json:"projects"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parsing projects response: %w", err)
		}

		all = append(all, payload.Projects...)
		if len(payload.Projects) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}

func (c *Client) Issue(ctx context.Context, id int) (*Issue, error) {
	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/issues/%d.json", id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting issue %d: %w", id, err)
	}

	var payload struct {
		Issue Issue `json:"issue"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing issue response: %w", err)
	}
	return &payload.Issue, nil
}

// TimeEntryActivities lists the time-entry activity enumeration.
func (c *Client) TimeEntryActivities(ctx context.Context) ([]Activity, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/enumerations/time_entry_activities.json", nil)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	var payload struct {
		Activities []Activity `json:"time_entry_activities"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing activities response: %w", err)
	}
	return payload.Activities, nil
}

// TimeEntries lists entries for one user sorted by spent_on. from and to
// are YYYY-MM-DD bounds; an empty to leaves the range open-ended.
func (c *Client) TimeEntries(ctx context.Context, userID int, from, to string) ([]TimeEntry, error) {
	var all []TimeEntry
	offset := 0
	for {
		q := url.Values{}
		q.Set("user_id", fmt.Sprintf("%d", userID))
		q.Set("sort", "spent_on")
		q.Set("from", from)
		if to != "" {
			q.Set("to", to)
		}
		q.Set("offset", fmt.Sprintf("%d", offset))
		q.Set("limit", fmt.Sprintf("%d", pageSize))

		data, err := c.doRequest(ctx, http.MethodGet, "/time_entries.json?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("listing time entries: %w", err)
		}

		var payload struct {
			TimeEntries []TimeEntry `json:"time_entries"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parsing time entries response: %w", err)
		}

		all = append(all, payload.TimeEntries...)
		if len(payload.TimeEntries) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}

// CreateTimeEntry submits one entry. A *ValidationError is returned
// unwrapped when the service rejects it.
func (c *Client) CreateTimeEntry(ctx context.Context, entry NewTimeEntry) (*TimeEntry, error) {
	body := struct {
		TimeEntry NewTimeEntry `json:"time_entry"`
	}{TimeEntry: entry}

	data, err := c.doRequest(ctx, http.MethodPost, "/time_entries.json", body)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, fmt.Errorf("creating time entry: %w", err)
	}

	var payload struct {
		TimeEntry TimeEntry `json:"time_entry"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing time entry response: %w", err)
	}
	return &payload.TimeEntry, nil
}
