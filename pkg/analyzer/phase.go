package analyzer

// Phase identifies a step of the analysis pipeline. Phases execute
// strictly in order; no phase begins before the previous one completes.
type Phase string

const (
	PhaseInitializing         Phase = "initializing"
	PhaseValidatingRepository Phase = "validating_repository"
	PhaseFetchingIssues       Phase = "fetching_issues"
	PhaseFilteringIssues      Phase = "filtering_issues"
	PhaseRetrievingComments   Phase = "retrieving_comments"
	PhaseCalculatingMetrics   Phase = "calculating_metrics"
	PhaseGeneratingOutput     Phase = "generating_output"
	PhaseCompleted            Phase = "completed"
)

// String returns the phase name used in diagnostics
func (p Phase) String() string {
	return string(p)
}
