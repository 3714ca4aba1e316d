package metrics

// LabelCount represents label usage statistics
type LabelCount struct {
	LabelName string `json:"label_name"`
	Count     int    `json:"count"`
}

// UserActivity represents per-user activity statistics. Usernames are
// the unique join key for all aggregation.
type UserActivity struct {
	Username      string `json:"username"`
	IssuesCreated int    `json:"issues_created"`
	CommentsMade  int    `json:"comments_made"`
}

// ActivityMetrics is a derived, read-only snapshot of activity across
// the filtered issue set. It is recomputed fully on each run and has no
// persistent identity.
type ActivityMetrics struct {
	TotalIssuesAnalyzed   int            `json:"total_issues_analyzed"`
	IssuesMatchingFilters int            `json:"issues_matching_filters"`
	AverageCommentCount   float64        `json:"average_comment_count"`
	CommentDistribution   map[string]int `json:"comment_distribution"`
	TopLabels             []LabelCount   `json:"top_labels"`
	ActivityByDay         map[string]int `json:"activity_by_day"`
	ActivityByWeek        map[string]int `json:"activity_by_week"`
	ActivityByMonth       map[string]int `json:"activity_by_month"`
	MostActiveUsers       []UserActivity `json:"most_active_users"`

	// Mean days from creation to close over closed issues; nil when no
	// closed issue qualifies.
	AverageResolutionDays *float64 `json:"average_resolution_days,omitempty"`
}

// Granularity is a calendar-aligned grouping for time bucketing
type Granularity string

const (
	// GranularityAuto lets the presentation layer pick a granularity
	GranularityAuto Granularity = "auto"
	// GranularityDaily buckets by calendar day (YYYY-MM-DD)
	GranularityDaily Granularity = "daily"
	// GranularityWeekly buckets by ISO week (YYYY-Www)
	GranularityWeekly Granularity = "weekly"
	// GranularityMonthly buckets by calendar month (YYYY-MM)
	GranularityMonthly Granularity = "monthly"
)

// IsValid reports whether the granularity is a known value
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityAuto, GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}
