package redmine

// Named is the id/name pair Redmine embeds in most resources.
type Named struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID        int    `json:"id"`
	Login     string `json:"login"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type Project struct {
	ID         int    `json:"id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// Activity is a time-entry activity enumeration value.
type Activity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Issue struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
	Project Named  `json:"project"`
}

// TimeEntry is a submitted entry as returned by the service.
// SpentOn is kept in the wire format (YYYY-MM-DD); it sorts and
// groups correctly as a plain string.
type TimeEntry struct {
	ID       int     `json:"id"`
	Project  Named   `json:"project"`
	User     Named   `json:"user"`
	Activity Named   `json:"activity"`
	Hours    float64 `json:"hours"`
	SpentOn  string  `json:"spent_on"`
	Comments string  `json:"comments"`
}

// NewTimeEntry is the payload for creating a time entry. IssueID zero
// means the entry is not linked to an issue.
type NewTimeEntry struct {
	ProjectID  int     `json:"project_id"`
	IssueID    int     `json:"issue_id,omitempty"`
	ActivityID int     `json:"activity_id"`
	SpentOn    string  `json:"spent_on"`
	Hours      float64 `json:"hours"`
	Comments   string  `json:"comments"`
}
