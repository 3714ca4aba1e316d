package analyzer

import (
	"time"

	"github.com/xuxiong/issue-insight/pkg/filter"
	"github.com/xuxiong/issue-insight/pkg/github"
	"github.com/xuxiong/issue-insight/pkg/issue"
	"github.com/xuxiong/issue-insight/pkg/metrics"
)

// Source supplies repository metadata, issues and comments. The
// implementation owns authentication, pagination and rate-limit
// backoff; pull requests are excluded before issues are returned.
type Source interface {
	GetRepository(owner, name string) (*github.Repository, error)
	GetIssues(owner, name string, state issue.IssueState, limit int) ([]issue.Issue, error)
	GetCommentsForIssue(owner, name string, number int) []issue.Comment
	GetRateLimitInfo() (*github.RateLimitInfo, error)
}

// Reporter receives advisory progress updates. Implementations must not
// feed anything back into the analysis.
type Reporter interface {
	StartPhase(phase Phase, total int)
	Advance(n int)
	Warnf(format string, args ...interface{})
	Finish()
}

// nopReporter discards all progress updates
type nopReporter struct{}

func (nopReporter) StartPhase(Phase, int)        {}
func (nopReporter) Advance(int)                  {}
func (nopReporter) Warnf(string, ...interface{}) {}
func (nopReporter) Finish()                      {}

// Result is the immutable outcome of a completed analysis, consumed
// read-only by the presentation adapters.
type Result struct {
	Repository           *github.Repository       `json:"repository"`
	Criteria             *filter.Criteria         `json:"criteria"`
	Issues               []issue.Issue            `json:"issues"`
	Metrics              *metrics.ActivityMetrics `json:"metrics"`
	TotalIssuesAvailable int                      `json:"total_issues_available"`
	Elapsed              time.Duration            `json:"elapsed"`
}

// Analyzer orchestrates one analysis run: validate repository, fetch
// issues, filter, optionally retrieve comments, compute metrics and
// assemble the result. Each run must use its own Analyzer instance;
// there is no shared state across runs.
type Analyzer struct {
	source   Source
	analyzer *metrics.Analyzer
	reporter Reporter

	// phase records the most recently entered phase, for diagnostics
	phase Phase

	// now is swappable in tests
	now func() time.Time
}

// New creates an Analyzer over the given source. A nil reporter
// disables progress updates.
func New(source Source, opts metrics.Options, reporter Reporter) *Analyzer {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Analyzer{
		source:   source,
		analyzer: metrics.NewAnalyzer(opts),
		reporter: reporter,
		phase:    PhaseInitializing,
		now:      time.Now,
	}
}

// Phase returns the phase the analyzer most recently entered. After a
// failed run this is the phase at which the failure occurred.
func (a *Analyzer) Phase() Phase {
	return a.phase
}

// Analyze runs the full pipeline against a repository URL. Criteria are
// validated before any network access; on failure no partial result is
// returned and the failing phase is attached to the error.
func (a *Analyzer) Analyze(repositoryURL string, criteria *filter.Criteria) (*Result, error) {
	start := a.now()

	a.enter(PhaseInitializing, 0)
	if criteria == nil {
		criteria = filter.NewCriteria()
	}
	if err := criteria.Validate(); err != nil {
		return nil, a.fail(err)
	}

	owner, name, err := github.ParseRepositoryURL(repositoryURL)
	if err != nil {
		return nil, a.fail(err)
	}

	a.enter(PhaseValidatingRepository, 0)
	repo, err := a.source.GetRepository(owner, name)
	if err != nil {
		return nil, a.fail(err)
	}

	if info, infoErr := a.source.GetRateLimitInfo(); infoErr == nil && info.Low() {
		a.reporter.Warnf("GitHub API quota low: %d/%d requests remaining, resets at %s",
			info.Remaining, info.Limit, info.Reset.Format(time.Kitchen))
	}

	a.enter(PhaseFetchingIssues, a.fetchEstimate(criteria))
	limit := 0
	if criteria.Limit != nil {
		limit = *criteria.Limit
	}
	state := criteria.State
	if state == "" {
		state = issue.StateAll
	}
	allIssues, err := a.source.GetIssues(repo.Owner, repo.Name, state, limit)
	if err != nil {
		return nil, a.fail(err)
	}

	a.enter(PhaseFilteringIssues, 0)
	filtered, err := filter.Apply(allIssues, criteria)
	if err != nil {
		return nil, a.fail(err)
	}

	if criteria.IncludeComments {
		a.enter(PhaseRetrievingComments, len(filtered))
		a.retrieveComments(repo, filtered)
	}

	a.enter(PhaseCalculatingMetrics, 0)
	snapshot := a.analyzer.Calculate(filtered, len(allIssues))

	a.enter(PhaseGeneratingOutput, 0)
	result := &Result{
		Repository:           repo,
		Criteria:             criteria,
		Issues:               filtered,
		Metrics:              snapshot,
		TotalIssuesAvailable: len(allIssues),
		Elapsed:              a.now().Sub(start),
	}

	a.enter(PhaseCompleted, 0)
	a.reporter.Finish()
	return result, nil
}

// retrieveComments populates comment lists for the filtered issues.
// A retrieval failure for one issue leaves its comment list empty and
// never aborts the remaining issues; the source guarantees an empty
// list rather than an error.
func (a *Analyzer) retrieveComments(repo *github.Repository, issues []issue.Issue) {
	for i := range issues {
		issues[i].Comments = a.source.GetCommentsForIssue(repo.Owner, repo.Name, issues[i].Number)
		a.reporter.Advance(1)
	}
}

// fetchEstimate returns the advisory progress total for the fetch
// phase. With a limit set it uses the fetch buffer heuristic to account
// for pull requests discarded after fetch; unlimited runs use a fixed
// conservative estimate. Never affects filtering correctness.
func (a *Analyzer) fetchEstimate(criteria *filter.Criteria) int {
	if criteria.Limit != nil {
		return github.FetchBuffer(*criteria.Limit)
	}
	return github.DefaultFetchEstimate
}

func (a *Analyzer) enter(phase Phase, total int) {
	a.phase = phase
	a.reporter.StartPhase(phase, total)
}

// fail tags the error with the failing phase for diagnostics
func (a *Analyzer) fail(err error) error {
	a.reporter.Finish()
	if analysisErr, ok := err.(*issue.AnalysisError); ok {
		return analysisErr.WithPhase(string(a.phase))
	}
	return issue.NewInternalError("analysis failed", err).WithPhase(string(a.phase))
}
