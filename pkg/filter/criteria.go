package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuxiong/issue-insight/pkg/issue"
)

// Criteria contains the full set of constraints used to narrow an issue
// list. A nil pointer or empty slice means the corresponding filter is
// not applied. AnyLabels/AnyAssignees select ANY (intersection) versus
// ALL (subset containment) semantics for the multi-value filters.
type Criteria struct {
	MinComments  *int             `json:"min_comments,omitempty"`
	MaxComments  *int             `json:"max_comments,omitempty"`
	State        issue.IssueState `json:"state,omitempty"`
	Labels       []string         `json:"labels,omitempty"`
	Assignees    []string         `json:"assignees,omitempty"`
	CreatedSince *time.Time       `json:"created_since,omitempty"`
	CreatedUntil *time.Time       `json:"created_until,omitempty"`
	UpdatedSince *time.Time       `json:"updated_since,omitempty"`
	UpdatedUntil *time.Time       `json:"updated_until,omitempty"`
	Limit        *int             `json:"limit,omitempty"`

	AnyLabels       bool `json:"any_labels"`
	AnyAssignees    bool `json:"any_assignees"`
	IncludeComments bool `json:"include_comments"`
}

// NewCriteria creates criteria with default combinator semantics (ANY)
func NewCriteria() *Criteria {
	return &Criteria{
		AnyLabels:    true,
		AnyAssignees: true,
	}
}

// Validate checks cross-field invariants. It returns a validation error
// describing the first violation found, or nil when the criteria are
// consistent. Called before any network access is attempted.
func (c *Criteria) Validate() error {
	if c.MinComments != nil && *c.MinComments < 0 {
		return issue.NewValidationError(fmt.Sprintf("min_comments must be non-negative, got %d", *c.MinComments), nil)
	}

	if c.MaxComments != nil && *c.MaxComments < 0 {
		return issue.NewValidationError(fmt.Sprintf("max_comments must be non-negative, got %d", *c.MaxComments), nil)
	}

	if c.MinComments != nil && c.MaxComments != nil && *c.MinComments > *c.MaxComments {
		return issue.NewValidationError("min_comments cannot be greater than max_comments", nil)
	}

	if c.State != "" && !c.State.IsValid() {
		return issue.NewValidationError(fmt.Sprintf("invalid state %q: valid states are open, closed, all", c.State), nil)
	}

	if c.CreatedSince != nil && c.CreatedUntil != nil && c.CreatedSince.After(*c.CreatedUntil) {
		return issue.NewValidationError("created_since cannot be after created_until", nil)
	}

	if c.UpdatedSince != nil && c.UpdatedUntil != nil && c.UpdatedSince.After(*c.UpdatedUntil) {
		return issue.NewValidationError("updated_since cannot be after updated_until", nil)
	}

	if c.Limit != nil && *c.Limit < 1 {
		return issue.NewValidationError(fmt.Sprintf("limit must be at least 1 when specified, got %d", *c.Limit), nil)
	}

	for _, label := range c.Labels {
		if strings.TrimSpace(label) == "" {
			return issue.NewValidationError("label names cannot be empty", nil)
		}
	}

	for _, assignee := range c.Assignees {
		if strings.TrimSpace(assignee) == "" {
			return issue.NewValidationError("assignee names cannot be empty", nil)
		}
	}

	return nil
}

// Summary returns a human-readable description of the active filters
func (c *Criteria) Summary() string {
	var parts []string

	if c.MinComments != nil {
		parts = append(parts, fmt.Sprintf("min_comments=%d", *c.MinComments))
	}
	if c.MaxComments != nil {
		parts = append(parts, fmt.Sprintf("max_comments=%d", *c.MaxComments))
	}
	if c.State != "" {
		parts = append(parts, fmt.Sprintf("state=%s", c.State))
	}
	if len(c.Labels) > 0 {
		join := " OR "
		if !c.AnyLabels {
			join = " AND "
		}
		parts = append(parts, fmt.Sprintf("labels=[%s]", strings.Join(c.Labels, join)))
	}
	if len(c.Assignees) > 0 {
		join := " OR "
		if !c.AnyAssignees {
			join = " AND "
		}
		parts = append(parts, fmt.Sprintf("assignees=[%s]", strings.Join(c.Assignees, join)))
	}
	if c.CreatedSince != nil {
		parts = append(parts, fmt.Sprintf("created_since=%s", c.CreatedSince.Format("2006-01-02")))
	}
	if c.CreatedUntil != nil {
		parts = append(parts, fmt.Sprintf("created_until=%s", c.CreatedUntil.Format("2006-01-02")))
	}
	if c.UpdatedSince != nil {
		parts = append(parts, fmt.Sprintf("updated_since=%s", c.UpdatedSince.Format("2006-01-02")))
	}
	if c.UpdatedUntil != nil {
		parts = append(parts, fmt.Sprintf("updated_until=%s", c.UpdatedUntil.Format("2006-01-02")))
	}
	if c.Limit != nil {
		parts = append(parts, fmt.Sprintf("limit=%d", *c.Limit))
	}

	if len(parts) == 0 {
		return "No filters applied"
	}
	return "Filters: " + strings.Join(parts, ", ")
}
