package issue

import (
	"time"
)

// IssueState represents the state of a GitHub issue
type IssueState string

const (
	// StateOpen matches issues that are currently open
	StateOpen IssueState = "open"
	// StateClosed matches issues that have been closed
	StateClosed IssueState = "closed"
	// StateAll matches issues regardless of state
	StateAll IssueState = "all"
)

// IsValid reports whether the state is one of open, closed or all
func (s IssueState) IsValid() bool {
	switch s {
	case StateOpen, StateClosed, StateAll:
		return true
	}
	return false
}

// User represents a GitHub user with the fields relevant for aggregation
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// Label represents a GitHub issue label
type Label struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// Comment represents a comment on a GitHub issue.
// Author is nil when the commenting account has been deleted; such
// comments are excluded from per-user aggregation.
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IssueID   int       `json:"issue_id"`
}

// Issue represents a single GitHub issue with the metadata used by the
// analysis pipeline. Issues are constructed once per fetch and treated as
// immutable afterwards, except that Comments may be populated by a later
// retrieval step. CommentCount is the authoritative count reported by the
// API and does not depend on whether comment bodies were fetched.
type Issue struct {
	ID            int64      `json:"id"`
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	URL           string     `json:"url,omitempty"`
	Body          string     `json:"body,omitempty"`
	State         IssueState `json:"state"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	Author        User       `json:"author"`
	Assignees     []User     `json:"assignees,omitempty"`
	Labels        []Label    `json:"labels,omitempty"`
	CommentCount  int        `json:"comment_count"`
	Comments      []Comment  `json:"comments,omitempty"`
	IsPullRequest bool       `json:"is_pull_request,omitempty"`
}

// LabelNames returns the names of the issue's labels
func (i *Issue) LabelNames() []string {
	names := make([]string, len(i.Labels))
	for idx, label := range i.Labels {
		names[idx] = label.Name
	}
	return names
}

// AssigneeLogins returns the usernames of the issue's assignees
func (i *Issue) AssigneeLogins() []string {
	logins := make([]string, len(i.Assignees))
	for idx, assignee := range i.Assignees {
		logins[idx] = assignee.Username
	}
	return logins
}

// IsClosed reports whether the issue is closed with a known close time
func (i *Issue) IsClosed() bool {
	return i.State == StateClosed && i.ClosedAt != nil
}

// ResolutionTime returns the time from creation to close. The second
// return value is false for issues that are not closed.
func (i *Issue) ResolutionTime() (time.Duration, bool) {
	if !i.IsClosed() {
		return 0, false
	}
	return i.ClosedAt.Sub(i.CreatedAt), true
}
