package filter

import (
	"github.com/xuxiong/issue-insight/pkg/issue"
)

// Apply filters issues through an ordered conjunctive pipeline: comment
// count bounds, state, labels, assignees, date ranges, and finally the
// result limit as a prefix truncation. Stages whose criterion is unset
// are skipped. The input slice is never mutated; a new slice is returned
// with survivors in their original order.
//
// Pull requests are excluded by the source before issues reach the
// engine; they are not re-checked here.
func Apply(issues []issue.Issue, criteria *Criteria) ([]issue.Issue, error) {
	if issues == nil {
		return nil, issue.NewValidationError("issues list cannot be nil", nil)
	}
	if criteria == nil {
		return nil, issue.NewValidationError("filter criteria cannot be nil", nil)
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	filtered := make([]issue.Issue, 0, len(issues))
	for _, is := range issues {
		if !matchCommentCount(&is, criteria) {
			continue
		}
		if !matchState(&is, criteria) {
			continue
		}
		if !matchLabels(&is, criteria) {
			continue
		}
		if !matchAssignees(&is, criteria) {
			continue
		}
		if !matchDates(&is, criteria) {
			continue
		}
		filtered = append(filtered, is)
	}

	// Limit is applied last, preserving the order of the surviving issues
	if criteria.Limit != nil && len(filtered) > *criteria.Limit {
		filtered = filtered[:*criteria.Limit]
	}

	return filtered, nil
}

// matchCommentCount checks the inclusive comment count bounds
func matchCommentCount(is *issue.Issue, c *Criteria) bool {
	if c.MinComments != nil && is.CommentCount < *c.MinComments {
		return false
	}
	if c.MaxComments != nil && is.CommentCount > *c.MaxComments {
		return false
	}
	return true
}

func matchState(is *issue.Issue, c *Criteria) bool {
	if c.State == "" || c.State == issue.StateAll {
		return true
	}
	return is.State == c.State
}

// matchLabels applies ANY/ALL membership on label names. An issue with
// no labels never matches a non-empty label criterion.
func matchLabels(is *issue.Issue, c *Criteria) bool {
	if len(c.Labels) == 0 {
		return true
	}
	if len(is.Labels) == 0 {
		return false
	}

	have := make(map[string]bool, len(is.Labels))
	for _, label := range is.Labels {
		have[label.Name] = true
	}

	return matchMembership(have, c.Labels, c.AnyLabels)
}

// matchAssignees applies ANY/ALL membership keyed on username
func matchAssignees(is *issue.Issue, c *Criteria) bool {
	if len(c.Assignees) == 0 {
		return true
	}
	if len(is.Assignees) == 0 {
		return false
	}

	have := make(map[string]bool, len(is.Assignees))
	for _, assignee := range is.Assignees {
		have[assignee.Username] = true
	}

	return matchMembership(have, c.Assignees, c.AnyAssignees)
}

// matchMembership checks intersection (any) or subset containment (all)
// of targets against the have set.
func matchMembership(have map[string]bool, targets []string, any bool) bool {
	if any {
		for _, t := range targets {
			if have[t] {
				return true
			}
		}
		return false
	}

	for _, t := range targets {
		if !have[t] {
			return false
		}
	}
	return true
}

// matchDates applies the four independent inclusive date bounds
func matchDates(is *issue.Issue, c *Criteria) bool {
	if c.CreatedSince != nil && is.CreatedAt.Before(*c.CreatedSince) {
		return false
	}
	if c.CreatedUntil != nil && is.CreatedAt.After(*c.CreatedUntil) {
		return false
	}
	if c.UpdatedSince != nil && is.UpdatedAt.Before(*c.UpdatedSince) {
		return false
	}
	if c.UpdatedUntil != nil && is.UpdatedAt.After(*c.UpdatedUntil) {
		return false
	}
	return true
}
