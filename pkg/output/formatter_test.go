package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuxiong/issue-insight/pkg/analyzer"
	"github.com/xuxiong/issue-insight/pkg/filter"
	"github.com/xuxiong/issue-insight/pkg/github"
	"github.com/xuxiong/issue-insight/pkg/issue"
	"github.com/xuxiong/issue-insight/pkg/metrics"
)

func testResult() *analyzer.Result {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	closed := created.AddDate(0, 0, 3)

	issues := []issue.Issue{
		{
			Number:       1,
			Title:        "Crash on startup",
			URL:          "https://github.com/octo/repo/issues/1",
			State:        issue.StateOpen,
			CommentCount: 7,
			CreatedAt:    created,
			UpdatedAt:    created,
			Author:       issue.User{Username: "alice"},
			Labels:       []issue.Label{{Name: "bug"}, {Name: "crash"}},
			Assignees:    []issue.User{{Username: "bob"}},
		},
		{
			Number:       2,
			Title:        "Fix typo",
			URL:          "https://github.com/octo/repo/issues/2",
			State:        issue.StateClosed,
			CommentCount: 1,
			CreatedAt:    created,
			UpdatedAt:    closed,
			ClosedAt:     &closed,
			Author:       issue.User{Username: "bob"},
		},
	}

	m := metrics.NewAnalyzer(metrics.DefaultOptions()).Calculate(issues, 10)

	return &analyzer.Result{
		Repository:           &github.Repository{Owner: "octo", Name: "repo"},
		Criteria:             filter.NewCriteria(),
		Issues:               issues,
		Metrics:              m,
		TotalIssuesAvailable: 10,
		Elapsed:              1234 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    FormatType
		wantErr bool
	}{
		{name: "table", want: FormatTable},
		{name: "", want: FormatTable},
		{name: "JSON", want: FormatJSON},
		{name: "csv", want: FormatCSV},
		{name: "quiet", want: FormatQuiet},
		{name: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatJSON, &buf)

	require.NoError(t, f.FormatResult(testResult()))

	var decoded struct {
		Repository struct {
			Owner string `json:"owner"`
		} `json:"repository"`
		Issues  []map[string]interface{} `json:"issues"`
		Metrics struct {
			IssuesMatchingFilters int `json:"issues_matching_filters"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "octo", decoded.Repository.Owner)
	assert.Len(t, decoded.Issues, 2)
	assert.Equal(t, 2, decoded.Metrics.IssuesMatchingFilters)
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatCSV, &buf)

	require.NoError(t, f.FormatResult(testResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"number", "title", "state", "comment_count", "created_at", "updated_at", "closed_at", "author", "labels", "assignees", "url"}, records[0])

	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Crash on startup", records[1][1])
	assert.Equal(t, "open", records[1][2])
	assert.Equal(t, "7", records[1][3])
	assert.Equal(t, "", records[1][6])
	assert.Equal(t, "bug;crash", records[1][8])
	assert.Equal(t, "bob", records[1][9])

	// Closed issue carries its close timestamp
	assert.Equal(t, "closed", records[2][2])
	assert.NotEmpty(t, records[2][6])
}

func TestFormatQuiet(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatQuiet, &buf)

	require.NoError(t, f.FormatResult(testResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"https://github.com/octo/repo/issues/1",
		"https://github.com/octo/repo/issues/2",
	}, lines)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatTable, &buf)

	require.NoError(t, f.FormatResult(testResult()))

	out := buf.String()
	assert.Contains(t, out, "Repository: octo/repo")
	assert.Contains(t, out, "Total issues analyzed: 10")
	assert.Contains(t, out, "Issues matching filters: 2")
	assert.Contains(t, out, "Average comment count: 4.0")
	assert.Contains(t, out, "Crash on startup")
	assert.Contains(t, out, "alice")

	// Detailed metrics are off by default
	assert.NotContains(t, out, "Activity Metrics")
}

func TestFormatTable_WithMetrics(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatTable, &buf).WithMetrics(true)

	require.NoError(t, f.FormatResult(testResult()))

	out := buf.String()
	assert.Contains(t, out, "Activity Metrics")
	assert.Contains(t, out, "Comment distribution: 0-5: 1, 6-10: 1, 11+: 0")
	assert.Contains(t, out, "bug: 1 issues")
	assert.Contains(t, out, "Daily activity")
	assert.Contains(t, out, "2024-03-01: 2")
	assert.Contains(t, out, "Average issue resolution time: 3.0 days")
}

func TestFormatTable_GranularityOverride(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatTable, &buf).
		WithMetrics(true).
		WithGranularity(metrics.GranularityMonthly)

	require.NoError(t, f.FormatResult(testResult()))

	out := buf.String()
	assert.Contains(t, out, "Monthly activity")
	assert.Contains(t, out, "2024-03: 2")
}

func TestFormatTable_NoMatches(t *testing.T) {
	result := testResult()
	result.Issues = nil
	result.Metrics = metrics.NewAnalyzer(metrics.DefaultOptions()).Calculate(nil, 10)

	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatTable, &buf)

	require.NoError(t, f.FormatResult(result))
	assert.Contains(t, buf.String(), "No issues found matching the specified criteria.")
}

func TestFormatTable_Comments(t *testing.T) {
	result := testResult()
	result.Issues[0].Comments = []issue.Comment{
		{Body: "same here", Author: &issue.User{Username: "carol"}},
		{Body: "orphaned"},
	}

	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatTable, &buf)

	require.NoError(t, f.FormatResult(result))

	out := buf.String()
	assert.Contains(t, out, "Comments")
	assert.Contains(t, out, "carol: same here")
	assert.Contains(t, out, "(deleted): orphaned")
}

func TestFormatError_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriter(FormatJSON, &buf)

	err := issue.NewNotFoundError("octo/repo").WithPhase("validating_repository")
	require.NoError(t, f.FormatError(err))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "not_found", decoded["type"])
	assert.Equal(t, "validating_repository", decoded["phase"])
	assert.NotEmpty(t, decoded["suggestion"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10c", truncate("exactly10c", 10))
	assert.Equal(t, "a long ...", truncate("a long string here", 10))
}
