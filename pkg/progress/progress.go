package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/xuxiong/issue-insight/pkg/analyzer"
)

// phaseLabels are the user-facing descriptions of the pipeline phases
var phaseLabels = map[analyzer.Phase]string{
	analyzer.PhaseInitializing:         "Initializing",
	analyzer.PhaseValidatingRepository: "Validating repository",
	analyzer.PhaseFetchingIssues:       "Fetching issues",
	analyzer.PhaseFilteringIssues:      "Applying filters",
	analyzer.PhaseRetrievingComments:   "Retrieving comments",
	analyzer.PhaseCalculatingMetrics:   "Calculating metrics",
	analyzer.PhaseGeneratingOutput:     "Generating output",
	analyzer.PhaseCompleted:            "Completed",
}

// SpinnerReporter renders phase progress with a terminal spinner. It is
// a pure consumer of progress updates; totals are advisory and never
// affect the analysis.
type SpinnerReporter struct {
	spin  *spinner.Spinner
	out   io.Writer
	total int
	done  int
	phase analyzer.Phase
}

// NewSpinnerReporter creates a reporter writing to out (usually stderr
// so that piped output stays clean).
func NewSpinnerReporter(out io.Writer) *SpinnerReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	return &SpinnerReporter{spin: s, out: out}
}

// StartPhase switches the spinner to a new phase. For phases with a
// known total the suffix carries a running counter.
func (r *SpinnerReporter) StartPhase(phase analyzer.Phase, total int) {
	r.phase = phase
	r.total = total
	r.done = 0

	if phase == analyzer.PhaseCompleted {
		r.Finish()
		return
	}

	r.spin.Suffix = " " + r.label()
	if !r.spin.Active() {
		r.spin.Start()
	}
}

// Advance records n processed items in the current phase
func (r *SpinnerReporter) Advance(n int) {
	r.done += n
	r.spin.Suffix = " " + r.label()
}

// Warnf prints a warning line without disturbing the spinner
func (r *SpinnerReporter) Warnf(format string, args ...interface{}) {
	active := r.spin.Active()
	if active {
		r.spin.Stop()
	}
	color.New(color.FgYellow).Fprintf(r.out, "! "+format+"\n", args...)
	if active {
		r.spin.Start()
	}
}

// Finish stops the spinner
func (r *SpinnerReporter) Finish() {
	if r.spin.Active() {
		r.spin.Stop()
	}
}

func (r *SpinnerReporter) label() string {
	label := phaseLabels[r.phase]
	if label == "" {
		label = string(r.phase)
	}
	if r.total > 0 {
		return fmt.Sprintf("%s (%d/%d)", label, r.done, r.total)
	}
	return label
}
