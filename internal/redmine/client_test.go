package redmine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret", nil)
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/current.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Redmine-API-Key"); got != "secret" {
			t.Errorf("api key header = %q", got)
		}
		fmt.Fprint(w, `{"user": {"id": 5, "login": "ada", "firstname": "Ada", "lastname": "Lovelace"}}`)
	})

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != 5 || user.Firstname != "Ada" || user.Lastname != "Lovelace" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestProjectByIdentifier(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/flux.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"project": {"id": 17, "identifier": "flux", "name": "Flux Capacitor"}}`)
	})

	p, err := client.Project(context.Background(), "flux")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 17 || p.Name != "Flux Capacitor" {
		t.Errorf("unexpected project: %+v", p)
	}
}

func TestIssueNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Issue(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestTimeEntryActivities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enumerations/time_entry_activities.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"time_entry_activities": [{"id": 8, "name": "Design"}, {"id": 9, "name": "Development"}]}`)
	})

	activities, err := client.TimeEntryActivities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(activities) != 2 || activities[1].Name != "Development" {
		t.Errorf("unexpected activities: %+v", activities)
	}
}

func TestTimeEntriesPagination(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		q := r.URL.Query()
		if q.Get("user_id") != "5" || q.Get("sort") != "spent_on" || q.Get("from") != "2023-01-01" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}

		offset := q.Get("offset")
		var entries []TimeEntry
		if offset == "0" {
			for i := 0; i < pageSize; i++ {
				entries = append(entries, TimeEntry{ID: i + 1, SpentOn: "2023-01-02", Hours: 1})
			}
		} else {
			entries = []TimeEntry{{ID: pageSize + 1, SpentOn: "2023-01-03", Hours: 2}}
		}
		json.NewEncoder(w).Encode(map[string]any{"time_entries": entries})
	})

	entries, err := client.TimeEntries(context.Background(), 5, "2023-01-01", "")
	if err != nil {
		t.Fatal(err)
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
	if len(entries) != pageSize+1 {
		t.Errorf("got %d entries, want %d", len(entries), pageSize+1)
	}
}

func TestCreateTimeEntry(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/time_entries.json" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}

		var body struct {
			TimeEntry NewTimeEntry `json:"time_entry"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.TimeEntry.ProjectID != 17 || body.TimeEntry.Hours != 3.5 || body.TimeEntry.SpentOn != "2023-01-02" {
			t.Errorf("unexpected payload: %+v", body.TimeEntry)
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"time_entry": {"id": 1234, "hours": 3.5, "spent_on": "2023-01-02"}}`)
	})

	created, err := client.CreateTimeEntry(context.Background(), NewTimeEntry{
		ProjectID:  17,
		ActivityID: 9,
		SpentOn:    "2023-01-02",
		Hours:      3.5,
		Comments:   "wiring",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != 1234 {
		t.Errorf("created id = %d, want 1234", created.ID)
	}
}

func TestCreateTimeEntryOmitsZeroIssueID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if _, ok := raw["time_entry"]["issue_id"]; ok {
			t.Error("issue_id must be omitted when zero")
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"time_entry": {"id": 1}}`)
	})

	if _, err := client.CreateTimeEntry(context.Background(), NewTimeEntry{ProjectID: 17, ActivityID: 9, SpentOn: "2023-01-02", Hours: 1}); err != nil {
		t.Fatal(err)
	}
}

func TestCreateTimeEntryValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"errors": ["Hours is invalid", "Activity cannot be blank"]}`)
	})

	_, err := client.CreateTimeEntry(context.Background(), NewTimeEntry{ProjectID: 17, Hours: -1})

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if len(valErr.Messages) != 2 || valErr.Messages[0] != "Hours is invalid" {
		t.Errorf("unexpected messages: %v", valErr.Messages)
	}
}

func TestProjectsPagination(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		var projects []Project
		if r.URL.Query().Get("offset") == "0" {
			for i := 0; i < pageSize; i++ {
				projects = append(projects, Project{ID: i + 1})
			}
		} else {
			projects = []Project{{ID: pageSize + 1}}
		}
		json.NewEncoder(w).Encode(map[string]any{"projects": projects})
	})

	projects, err := client.Projects(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if requests != 2 || len(projects) != pageSize+1 {
		t.Errorf("requests = %d, projects = %d", requests, len(projects))
	}
}
