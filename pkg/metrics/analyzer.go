package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuxiong/issue-insight/pkg/issue"
)

// Options tune the analyzer's limits and thresholds
type Options struct {
	// TopLabelLimit caps the top-labels ranking (default 10)
	TopLabelLimit int
	// ActiveUserLimit caps the most-active-users ranking (default 5)
	ActiveUserLimit int
	// TrendingGrowthThreshold is the minimum growth ratio between two
	// periods for a label to qualify as trending (default 0.25)
	TrendingGrowthThreshold float64
	// TrendingMinOccurrences is the minimum current-period count for a
	// label to qualify as trending (default 5)
	TrendingMinOccurrences int
}

// DefaultOptions returns the default analyzer tuning
func DefaultOptions() Options {
	return Options{
		TopLabelLimit:           10,
		ActiveUserLimit:         5,
		TrendingGrowthThreshold: 0.25,
		TrendingMinOccurrences:  5,
	}
}

// Analyzer computes activity metrics over a filtered issue set. All
// entry points are pure: no I/O, deterministic given identical inputs.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an analyzer with the given options; zero option
// fields fall back to the defaults.
func NewAnalyzer(opts Options) *Analyzer {
	defaults := DefaultOptions()
	if opts.TopLabelLimit <= 0 {
		opts.TopLabelLimit = defaults.TopLabelLimit
	}
	if opts.ActiveUserLimit <= 0 {
		opts.ActiveUserLimit = defaults.ActiveUserLimit
	}
	if opts.TrendingGrowthThreshold <= 0 {
		opts.TrendingGrowthThreshold = defaults.TrendingGrowthThreshold
	}
	if opts.TrendingMinOccurrences <= 0 {
		opts.TrendingMinOccurrences = defaults.TrendingMinOccurrences
	}
	return &Analyzer{opts: opts}
}

// Calculate computes the full metrics snapshot for the filtered issues.
// totalCount is the pre-filter issue count; pass len(issues) when the
// whole repository was analyzed. All three time granularities are
// computed unconditionally.
func (a *Analyzer) Calculate(issues []issue.Issue, totalCount int) *ActivityMetrics {
	if totalCount < len(issues) {
		totalCount = len(issues)
	}

	return &ActivityMetrics{
		TotalIssuesAnalyzed:   totalCount,
		IssuesMatchingFilters: len(issues),
		AverageCommentCount:   a.averageComments(issues),
		CommentDistribution:   a.commentDistribution(issues),
		TopLabels:             a.topLabels(issues),
		ActivityByDay:         a.TimeBreakdown(issues, GranularityDaily),
		ActivityByWeek:        a.TimeBreakdown(issues, GranularityWeekly),
		ActivityByMonth:       a.TimeBreakdown(issues, GranularityMonthly),
		MostActiveUsers:       a.MostActiveUsers(issues),
		AverageResolutionDays: a.averageResolutionDays(issues),
	}
}

// averageComments returns the arithmetic mean of comment counts, 0.0
// for an empty list.
func (a *Analyzer) averageComments(issues []issue.Issue) float64 {
	if len(issues) == 0 {
		return 0.0
	}
	total := 0
	for _, is := range issues {
		total += is.CommentCount
	}
	return float64(total) / float64(len(issues))
}

// commentDistribution buckets issues into the fixed 0-5 / 6-10 / 11+
// comment count histogram.
func (a *Analyzer) commentDistribution(issues []issue.Issue) map[string]int {
	dist := map[string]int{
		"0-5":  0,
		"6-10": 0,
		"11+":  0,
	}

	for _, is := range issues {
		switch {
		case is.CommentCount >= 11:
			dist["11+"]++
		case is.CommentCount >= 6:
			dist["6-10"]++
		default:
			dist["0-5"]++
		}
	}

	return dist
}

// topLabels counts label occurrences across the issue set and returns
// the most frequent ones, ties broken by first-encountered order.
func (a *Analyzer) topLabels(issues []issue.Issue) []LabelCount {
	counts := make(map[string]int)
	var order []string

	for _, is := range issues {
		for _, label := range is.Labels {
			if _, seen := counts[label.Name]; !seen {
				order = append(order, label.Name)
			}
			counts[label.Name]++
		}
	}

	ranked := make([]LabelCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, LabelCount{LabelName: name, Count: counts[name]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > a.opts.TopLabelLimit {
		ranked = ranked[:a.opts.TopLabelLimit]
	}
	return ranked
}

// TimeBreakdown groups issues by creation time into calendar-aligned
// buckets. An unknown granularity falls back to monthly. The returned
// map has string keys that sort ascending in chronological order.
func (a *Analyzer) TimeBreakdown(issues []issue.Issue, granularity Granularity) map[string]int {
	buckets := make(map[string]int)

	for _, is := range issues {
		var key string
		switch granularity {
		case GranularityDaily:
			key = is.CreatedAt.Format("2006-01-02")
		case GranularityWeekly:
			year, week := is.CreatedAt.ISOWeek()
			key = fmt.Sprintf("%d-W%02d", year, week)
		default:
			key = is.CreatedAt.Format("2006-01")
		}
		buckets[key]++
	}

	return buckets
}

// MostActiveUsers aggregates, per username, issues authored and (when
// comment bodies were fetched) comments made. Comments whose author is
// absent represent deleted accounts and are excluded. Users are ranked
// by comments made descending, then issues created descending, then
// username ascending, truncated to the configured limit.
func (a *Analyzer) MostActiveUsers(issues []issue.Issue) []UserActivity {
	activity := make(map[string]*UserActivity)

	record := func(username string) *UserActivity {
		ua, ok := activity[username]
		if !ok {
			ua = &UserActivity{Username: username}
			activity[username] = ua
		}
		return ua
	}

	for _, is := range issues {
		record(is.Author.Username).IssuesCreated++

		for _, comment := range is.Comments {
			if comment.Author == nil {
				continue
			}
			record(comment.Author.Username).CommentsMade++
		}
	}

	ranked := make([]UserActivity, 0, len(activity))
	for _, ua := range activity {
		ranked = append(ranked, *ua)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CommentsMade != ranked[j].CommentsMade {
			return ranked[i].CommentsMade > ranked[j].CommentsMade
		}
		if ranked[i].IssuesCreated != ranked[j].IssuesCreated {
			return ranked[i].IssuesCreated > ranked[j].IssuesCreated
		}
		return ranked[i].Username < ranked[j].Username
	})

	if len(ranked) > a.opts.ActiveUserLimit {
		ranked = ranked[:a.opts.ActiveUserLimit]
	}
	return ranked
}

// averageResolutionDays returns the mean creation-to-close duration in
// days over the closed issues, or nil when none are closed. Open issues
// never influence the average.
func (a *Analyzer) averageResolutionDays(issues []issue.Issue) *float64 {
	var total time.Duration
	closed := 0

	for _, is := range issues {
		if resolution, ok := is.ResolutionTime(); ok {
			total += resolution
			closed++
		}
	}

	if closed == 0 {
		return nil
	}

	days := total.Hours() / 24 / float64(closed)
	return &days
}

// TrendingLabels compares label occurrences between two disjoint issue
// sets. A label is trending when its current-period count meets the
// minimum-occurrence floor and it either did not occur in the previous
// period or its growth ratio meets the growth threshold. The result is
// sorted by current-period count descending; labels occurring only in
// the previous period never qualify.
func (a *Analyzer) TrendingLabels(current, previous []issue.Issue) []LabelCount {
	currentCounts, order := countLabels(current)
	previousCounts, _ := countLabels(previous)

	var trending []LabelCount
	for _, name := range order {
		count := currentCounts[name]
		if count < a.opts.TrendingMinOccurrences {
			continue
		}

		prev := previousCounts[name]
		if prev > 0 {
			growth := float64(count-prev) / float64(prev)
			if growth < a.opts.TrendingGrowthThreshold {
				continue
			}
		}

		trending = append(trending, LabelCount{LabelName: name, Count: count})
	}

	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].Count > trending[j].Count
	})
	return trending
}

// countLabels tallies label occurrences preserving first-encounter order
func countLabels(issues []issue.Issue) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for _, is := range issues {
		for _, label := range is.Labels {
			if _, seen := counts[label.Name]; !seen {
				order = append(order, label.Name)
			}
			counts[label.Name]++
		}
	}
	return counts, order
}

// SortedBucketKeys returns the bucket keys of a time breakdown in
// ascending order.
func SortedBucketKeys(buckets map[string]int) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
