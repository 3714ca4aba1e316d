package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/xuxiong/issue-insight/pkg/analyzer"
	"github.com/xuxiong/issue-insight/pkg/issue"
	"github.com/xuxiong/issue-insight/pkg/metrics"
)

// FormatType represents the output format type
type FormatType int

const (
	// FormatTable outputs a formatted table with a metrics summary
	FormatTable FormatType = iota
	// FormatJSON outputs the full result as JSON
	FormatJSON
	// FormatCSV outputs the filtered issues as CSV
	FormatCSV
	// FormatQuiet outputs one issue URL per line
	FormatQuiet
)

// ParseFormat maps a format name to its FormatType
func ParseFormat(name string) (FormatType, error) {
	switch strings.ToLower(name) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "quiet":
		return FormatQuiet, nil
	}
	return FormatTable, issue.NewValidationError(fmt.Sprintf("unknown output format %q: valid formats are table, json, csv", name), nil)
}

// Formatter renders an analysis result. It is a read-only consumer of
// the result and produces no feedback into the pipeline.
type Formatter struct {
	format      FormatType
	granularity metrics.Granularity
	showMetrics bool
	writer      io.Writer
}

// NewFormatter creates a formatter writing to stdout
func NewFormatter(format FormatType) *Formatter {
	return &Formatter{
		format:      format,
		granularity: metrics.GranularityAuto,
		writer:      os.Stdout,
	}
}

// NewFormatterWithWriter creates a formatter with a custom writer
func NewFormatterWithWriter(format FormatType, writer io.Writer) *Formatter {
	f := NewFormatter(format)
	f.writer = writer
	return f
}

// WithGranularity sets the time granularity used for the activity display
func (f *Formatter) WithGranularity(g metrics.Granularity) *Formatter {
	f.granularity = g
	return f
}

// WithMetrics enables the detailed metrics section in table output
func (f *Formatter) WithMetrics(show bool) *Formatter {
	f.showMetrics = show
	return f
}

// FormatResult renders the complete analysis result
func (f *Formatter) FormatResult(result *analyzer.Result) error {
	switch f.format {
	case FormatJSON:
		return f.formatJSON(result)
	case FormatCSV:
		return f.formatCSV(result)
	case FormatQuiet:
		return f.formatQuiet(result)
	default:
		return f.formatTable(result)
	}
}

// formatJSON writes the full result object with indentation
func (f *Formatter) formatJSON(result *analyzer.Result) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// formatCSV writes one row per filtered issue
func (f *Formatter) formatCSV(result *analyzer.Result) error {
	w := csv.NewWriter(f.writer)
	defer w.Flush()

	headers := []string{"number", "title", "state", "comment_count", "created_at", "updated_at", "closed_at", "author", "labels", "assignees", "url"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, is := range result.Issues {
		closedAt := ""
		if is.ClosedAt != nil {
			closedAt = is.ClosedAt.Format("2006-01-02T15:04:05Z07:00")
		}

		record := []string{
			strconv.Itoa(is.Number),
			is.Title,
			string(is.State),
			strconv.Itoa(is.CommentCount),
			is.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			is.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			closedAt,
			is.Author.Username,
			strings.Join(is.LabelNames(), ";"),
			strings.Join(is.AssigneeLogins(), ";"),
			is.URL,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// formatQuiet writes one issue URL per line
func (f *Formatter) formatQuiet(result *analyzer.Result) error {
	for _, is := range result.Issues {
		if _, err := fmt.Fprintln(f.writer, is.URL); err != nil {
			return err
		}
	}
	return nil
}

// formatTable writes the summary header, the optional metrics section
// and the issues table.
func (f *Formatter) formatTable(result *analyzer.Result) error {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Fprintf(f.writer, "Repository: %s\n", result.Repository.FullName())
	fmt.Fprintf(f.writer, "Total issues analyzed: %s\n", humanize.Comma(int64(result.Metrics.TotalIssuesAnalyzed)))
	fmt.Fprintf(f.writer, "Issues matching filters: %s\n", humanize.Comma(int64(result.Metrics.IssuesMatchingFilters)))
	fmt.Fprintf(f.writer, "Average comment count: %.1f\n", result.Metrics.AverageCommentCount)
	dim.Fprintf(f.writer, "Completed in %s\n", result.Elapsed.Round(10*time.Millisecond))

	if f.showMetrics {
		f.writeMetrics(result.Metrics)
	}

	if len(result.Issues) == 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, "No issues found matching the specified criteria.")
		return nil
	}

	fmt.Fprintln(f.writer)
	t := table.NewWriter()
	t.SetOutputMirror(f.writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Title", "State", "Comments", "Created", "Author"})

	for _, is := range result.Issues {
		t.AppendRow(table.Row{
			is.Number,
			truncate(is.Title, 50),
			strings.ToUpper(string(is.State)),
			is.CommentCount,
			is.CreatedAt.Format("2006-01-02"),
			is.Author.Username,
		})
	}
	t.Render()

	f.writeComments(result.Issues)
	return nil
}

// writeMetrics renders the detailed activity metrics section
func (f *Formatter) writeMetrics(m *metrics.ActivityMetrics) {
	heading := color.New(color.Bold, color.FgCyan)

	fmt.Fprintln(f.writer)
	heading.Fprintln(f.writer, "Activity Metrics")

	if len(m.CommentDistribution) > 0 {
		fmt.Fprintf(f.writer, "Comment distribution: 0-5: %d, 6-10: %d, 11+: %d\n",
			m.CommentDistribution["0-5"], m.CommentDistribution["6-10"], m.CommentDistribution["11+"])
	}

	if len(m.TopLabels) > 0 {
		fmt.Fprintln(f.writer, "Top labels:")
		for _, label := range m.TopLabels {
			fmt.Fprintf(f.writer, "  %s: %d issues\n", label.LabelName, label.Count)
		}
	}

	f.writeTimeActivity(m)

	if len(m.MostActiveUsers) > 0 {
		fmt.Fprintln(f.writer, "Most active users:")
		for _, user := range m.MostActiveUsers {
			if user.CommentsMade > 0 {
				fmt.Fprintf(f.writer, "  %s: %d comments, %d issues\n", user.Username, user.CommentsMade, user.IssuesCreated)
			} else {
				fmt.Fprintf(f.writer, "  %s: %d issues\n", user.Username, user.IssuesCreated)
			}
		}
	}

	if m.AverageResolutionDays != nil {
		fmt.Fprintf(f.writer, "Average issue resolution time: %.1f days\n", *m.AverageResolutionDays)
	}
}

// writeTimeActivity picks the granularity to display. Auto prefers
// daily for short ranges, weekly for medium ones, monthly otherwise.
func (f *Formatter) writeTimeActivity(m *metrics.ActivityMetrics) {
	buckets, title := f.selectActivity(m)
	if len(buckets) == 0 {
		return
	}

	fmt.Fprintf(f.writer, "%s:\n", title)
	for _, key := range metrics.SortedBucketKeys(buckets) {
		fmt.Fprintf(f.writer, "  %s: %d\n", key, buckets[key])
	}
}

func (f *Formatter) selectActivity(m *metrics.ActivityMetrics) (map[string]int, string) {
	switch f.granularity {
	case metrics.GranularityDaily:
		return m.ActivityByDay, "Daily activity"
	case metrics.GranularityWeekly:
		return m.ActivityByWeek, "Weekly activity"
	case metrics.GranularityMonthly:
		return m.ActivityByMonth, "Monthly activity"
	}

	if len(m.ActivityByDay) > 0 && len(m.ActivityByDay) <= 30 {
		return m.ActivityByDay, "Daily activity"
	}
	if len(m.ActivityByWeek) > 0 && len(m.ActivityByWeek) <= 26 {
		return m.ActivityByWeek, "Weekly activity"
	}
	return m.ActivityByMonth, "Monthly activity"
}

// writeComments prints fetched comment bodies for the first issues that
// have them. Only meaningful after a run with include-comments.
func (f *Formatter) writeComments(issues []issue.Issue) {
	const displayLimit = 5

	shown := 0
	for _, is := range issues {
		if len(is.Comments) == 0 {
			continue
		}
		if shown == 0 {
			fmt.Fprintln(f.writer)
			color.New(color.Bold).Fprintln(f.writer, "Comments")
		}
		fmt.Fprintf(f.writer, "Issue #%d: %s\n", is.Number, is.Title)
		for _, comment := range is.Comments {
			author := "(deleted)"
			if comment.Author != nil {
				author = comment.Author.Username
			}
			fmt.Fprintf(f.writer, "  %s: %s\n", author, truncate(comment.Body, 120))
		}
		shown++
		if shown >= displayLimit {
			break
		}
	}
}

// FormatError formats an error for output
func (f *Formatter) FormatError(err error) error {
	if f.format == FormatJSON {
		errorData := map[string]string{
			"error": err.Error(),
		}
		if analysisErr, ok := err.(*issue.AnalysisError); ok {
			errorData["type"] = analysisErr.Type.String()
			if analysisErr.Phase != "" {
				errorData["phase"] = analysisErr.Phase
			}
			if analysisErr.Suggestion != "" {
				errorData["suggestion"] = analysisErr.Suggestion
			}
		}

		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(errorData)
	}

	_, printErr := fmt.Fprintln(f.writer, err.Error())
	return printErr
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
