package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuxiong/issue-insight/pkg/filter"
	"github.com/xuxiong/issue-insight/pkg/github"
	"github.com/xuxiong/issue-insight/pkg/issue"
	"github.com/xuxiong/issue-insight/pkg/metrics"
)

// mockSource implements Source with canned data and call tracking
type mockSource struct {
	repo   *github.Repository
	issues []issue.Issue

	repoErr   error
	issuesErr error

	comments    map[int][]issue.Comment
	commentReqs []int

	rateInfo *github.RateLimitInfo

	repoCalls   int
	issuesCalls int
}

func (m *mockSource) GetRepository(owner, name string) (*github.Repository, error) {
	m.repoCalls++
	if m.repoErr != nil {
		return nil, m.repoErr
	}
	return m.repo, nil
}

func (m *mockSource) GetIssues(owner, name string, state issue.IssueState, limit int) ([]issue.Issue, error) {
	m.issuesCalls++
	if m.issuesErr != nil {
		return nil, m.issuesErr
	}
	return m.issues, nil
}

func (m *mockSource) GetCommentsForIssue(owner, name string, number int) []issue.Comment {
	m.commentReqs = append(m.commentReqs, number)
	if comments, ok := m.comments[number]; ok {
		return comments
	}
	return []issue.Comment{}
}

func (m *mockSource) GetRateLimitInfo() (*github.RateLimitInfo, error) {
	if m.rateInfo != nil {
		return m.rateInfo, nil
	}
	return &github.RateLimitInfo{Limit: 5000, Remaining: 5000, Reset: time.Now().Add(time.Hour)}, nil
}

// recordingReporter captures progress callbacks for assertions
type recordingReporter struct {
	phases   []Phase
	warnings []string
	finished bool
}

func (r *recordingReporter) StartPhase(phase Phase, total int) { r.phases = append(r.phases, phase) }
func (r *recordingReporter) Advance(n int)                     {}
func (r *recordingReporter) Warnf(format string, args ...interface{}) {
	r.warnings = append(r.warnings, format)
}
func (r *recordingReporter) Finish() { r.finished = true }

func testIssue(number, comments int) issue.Issue {
	return issue.Issue{
		ID:           int64(number),
		Number:       number,
		Title:        "issue",
		State:        issue.StateOpen,
		CommentCount: comments,
		CreatedAt:    time.Date(2024, 3, number, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 3, number, 0, 0, 0, 0, time.UTC),
		Author:       issue.User{Username: "author"},
	}
}

func testSource() *mockSource {
	return &mockSource{
		repo: &github.Repository{Owner: "octo", Name: "repo", IsPublic: true},
		issues: []issue.Issue{
			testIssue(1, 10),
			testIssue(2, 2),
			testIssue(3, 15),
		},
	}
}

func intPtr(v int) *int { return &v }

func TestAnalyze_EndToEnd(t *testing.T) {
	source := testSource()
	a := New(source, metrics.DefaultOptions(), nil)

	criteria := filter.NewCriteria()
	criteria.MinComments = intPtr(5)

	result, err := a.Analyze("https://github.com/octo/repo", criteria)
	require.NoError(t, err)

	assert.Equal(t, "octo/repo", result.Repository.FullName())
	assert.Equal(t, 3, result.TotalIssuesAvailable)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, 1, result.Issues[0].Number)
	assert.Equal(t, 3, result.Issues[1].Number)

	require.NotNil(t, result.Metrics)
	assert.Equal(t, 3, result.Metrics.TotalIssuesAnalyzed)
	assert.Equal(t, 2, result.Metrics.IssuesMatchingFilters)
	assert.InDelta(t, 12.5, result.Metrics.AverageCommentCount, 0.0001)

	assert.Equal(t, PhaseCompleted, a.Phase())
}

func TestAnalyze_NilCriteriaAnalyzesEverything(t *testing.T) {
	source := testSource()
	a := New(source, metrics.DefaultOptions(), nil)

	result, err := a.Analyze("octo/repo", nil)
	require.NoError(t, err)
	assert.Len(t, result.Issues, 3)
}

func TestAnalyze_InvalidCriteriaFailsBeforeAnyFetch(t *testing.T) {
	source := testSource()
	a := New(source, metrics.DefaultOptions(), nil)

	criteria := filter.NewCriteria()
	criteria.MinComments = intPtr(10)
	criteria.MaxComments = intPtr(5)

	_, err := a.Analyze("octo/repo", criteria)
	require.Error(t, err)

	var analysisErr *issue.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, issue.ErrorTypeValidation, analysisErr.Type)
	assert.Equal(t, string(PhaseInitializing), analysisErr.Phase)

	assert.Zero(t, source.repoCalls)
	assert.Zero(t, source.issuesCalls)
}

func TestAnalyze_InvalidURLFailsBeforeAnyFetch(t *testing.T) {
	source := testSource()
	a := New(source, metrics.DefaultOptions(), nil)

	_, err := a.Analyze("not a url", nil)
	require.Error(t, err)
	assert.Zero(t, source.repoCalls)
}

func TestAnalyze_RepositoryErrorCarriesPhase(t *testing.T) {
	source := testSource()
	source.repoErr = issue.NewNotFoundError("octo/repo")
	a := New(source, metrics.DefaultOptions(), nil)

	_, err := a.Analyze("octo/repo", nil)
	require.Error(t, err)

	var analysisErr *issue.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, issue.ErrorTypeNotFound, analysisErr.Type)
	assert.Equal(t, string(PhaseValidatingRepository), analysisErr.Phase)
	assert.Equal(t, PhaseValidatingRepository, a.Phase())
}

func TestAnalyze_FetchErrorCarriesPhase(t *testing.T) {
	source := testSource()
	source.issuesErr = issue.NewAPIError("boom", nil)
	a := New(source, metrics.DefaultOptions(), nil)

	_, err := a.Analyze("octo/repo", nil)
	require.Error(t, err)

	var analysisErr *issue.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, string(PhaseFetchingIssues), analysisErr.Phase)
}

func TestAnalyze_CommentsOnlyWhenRequested(t *testing.T) {
	source := testSource()
	a := New(source, metrics.DefaultOptions(), nil)

	_, err := a.Analyze("octo/repo", nil)
	require.NoError(t, err)
	assert.Empty(t, source.commentReqs)
}

func TestAnalyze_RetrievesCommentsForFilteredIssues(t *testing.T) {
	source := testSource()
	source.comments = map[int][]issue.Comment{
		1: {{ID: 100, Body: "first", Author: &issue.User{Username: "alice"}}},
	}
	a := New(source, metrics.DefaultOptions(), nil)

	criteria := filter.NewCriteria()
	criteria.MinComments = intPtr(5)
	criteria.IncludeComments = true

	result, err := a.Analyze("octo/repo", criteria)
	require.NoError(t, err)

	// Comments requested only for surviving issues, in order
	assert.Equal(t, []int{1, 3}, source.commentReqs)

	require.Len(t, result.Issues, 2)
	assert.Len(t, result.Issues[0].Comments, 1)
	// Issue 3 had no retrievable comments; its list stays empty and the
	// run still succeeds
	assert.Empty(t, result.Issues[1].Comments)
}

func TestAnalyze_ReportsPhasesInOrder(t *testing.T) {
	source := testSource()
	reporter := &recordingReporter{}
	a := New(source, metrics.DefaultOptions(), reporter)

	criteria := filter.NewCriteria()
	criteria.IncludeComments = true

	_, err := a.Analyze("octo/repo", criteria)
	require.NoError(t, err)

	assert.Equal(t, []Phase{
		PhaseInitializing,
		PhaseValidatingRepository,
		PhaseFetchingIssues,
		PhaseFilteringIssues,
		PhaseRetrievingComments,
		PhaseCalculatingMetrics,
		PhaseGeneratingOutput,
		PhaseCompleted,
	}, reporter.phases)
	assert.True(t, reporter.finished)
}

func TestAnalyze_WarnsOnLowQuota(t *testing.T) {
	source := testSource()
	source.rateInfo = &github.RateLimitInfo{Limit: 5000, Remaining: 100, Reset: time.Now().Add(time.Hour)}
	reporter := &recordingReporter{}
	a := New(source, metrics.DefaultOptions(), reporter)

	_, err := a.Analyze("octo/repo", nil)
	require.NoError(t, err)
	assert.Len(t, reporter.warnings, 1)
}
