package args

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/xuxiong/issue-insight/pkg/filter"
	"github.com/xuxiong/issue-insight/pkg/issue"
	"github.com/xuxiong/issue-insight/pkg/utils"
)

// AddFilterFlags registers the issue filtering flags on the command
func AddFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-comments", -1, "Minimum comment count filter (inclusive)")
	cmd.Flags().Int("max-comments", -1, "Maximum comment count filter (inclusive)")
	cmd.Flags().StringP("state", "s", "", "Filter by state: {open|closed|all}")
	cmd.Flags().StringSliceP("label", "l", []string{}, "Filter by label (can be repeated)")
	cmd.Flags().StringSliceP("assignee", "a", []string{}, "Filter by assignee (can be repeated)")
	cmd.Flags().Bool("all-labels", false, "Require all specified labels instead of any")
	cmd.Flags().Bool("all-assignees", false, "Require all specified assignees instead of any")
	cmd.Flags().String("created-since", "", "Issues created on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("created-until", "", "Issues created on or before this date (YYYY-MM-DD)")
	cmd.Flags().String("updated-since", "", "Issues updated on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("updated-until", "", "Issues updated on or before this date (YYYY-MM-DD)")
	cmd.Flags().IntP("limit", "L", 100, "Maximum number of issues to return (0 for unlimited)")
	cmd.Flags().Bool("include-comments", false, "Fetch comment bodies for matching issues")
}

// ParseFilterFlags extracts filter criteria from command flags. Date
// flags accept ISO dates and @today expressions. Validation of
// cross-field invariants happens in Criteria.Validate, before any
// network access.
func ParseFilterFlags(cmd *cobra.Command) (*filter.Criteria, error) {
	criteria := filter.NewCriteria()

	if minComments, err := cmd.Flags().GetInt("min-comments"); err != nil {
		return nil, err
	} else if cmd.Flags().Changed("min-comments") {
		criteria.MinComments = &minComments
	}

	if maxComments, err := cmd.Flags().GetInt("max-comments"); err != nil {
		return nil, err
	} else if cmd.Flags().Changed("max-comments") {
		criteria.MaxComments = &maxComments
	}

	state, err := cmd.Flags().GetString("state")
	if err != nil {
		return nil, err
	}
	criteria.State = issue.IssueState(state)

	if criteria.Labels, err = cmd.Flags().GetStringSlice("label"); err != nil {
		return nil, err
	}

	if criteria.Assignees, err = cmd.Flags().GetStringSlice("assignee"); err != nil {
		return nil, err
	}

	allLabels, err := cmd.Flags().GetBool("all-labels")
	if err != nil {
		return nil, err
	}
	criteria.AnyLabels = !allLabels

	allAssignees, err := cmd.Flags().GetBool("all-assignees")
	if err != nil {
		return nil, err
	}
	criteria.AnyAssignees = !allAssignees

	if criteria.CreatedSince, err = parseDateFlag(cmd, "created-since"); err != nil {
		return nil, err
	}
	if criteria.CreatedUntil, err = parseDateFlag(cmd, "created-until"); err != nil {
		return nil, err
	}
	if criteria.UpdatedSince, err = parseDateFlag(cmd, "updated-since"); err != nil {
		return nil, err
	}
	if criteria.UpdatedUntil, err = parseDateFlag(cmd, "updated-until"); err != nil {
		return nil, err
	}

	// Limit 0 means unlimited. The flag default is left to the caller
	// so a config file default can apply when the flag is not set.
	if limit, err := cmd.Flags().GetInt("limit"); err != nil {
		return nil, err
	} else if cmd.Flags().Changed("limit") && limit != 0 {
		criteria.Limit = &limit
	}

	if criteria.IncludeComments, err = cmd.Flags().GetBool("include-comments"); err != nil {
		return nil, err
	}

	return criteria, nil
}

// parseDateFlag parses an optional date flag into a bound
func parseDateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	parsed, err := utils.ParseDateInput(value)
	if err != nil {
		return nil, issue.NewValidationError("invalid --"+name+" value", err)
	}
	return &parsed, nil
}
