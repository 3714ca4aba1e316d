package output

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/xuxiong/issue-insight/pkg/github"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// extensions maps format types to their file extensions
var extensions = map[FormatType]string{
	FormatJSON: "json",
	FormatCSV:  "csv",
}

// GenerateFilename builds a unique output filename of the form
// owner-repo-issues-TIMESTAMP.ext for non-table formats written to disk
// without an explicit path. An existing file bumps a numeric suffix.
func GenerateFilename(repo *github.Repository, format FormatType) string {
	return generateFilenameAt(repo, format, time.Now(), fileExists)
}

func generateFilenameAt(repo *github.Repository, format FormatType, now time.Time, exists func(string) bool) string {
	ext := extensions[format]
	if ext == "" {
		ext = "txt"
	}

	base := fmt.Sprintf("%s-%s-issues-%s",
		sanitize(repo.Owner), sanitize(repo.Name), now.Format("20060102-150405"))

	name := fmt.Sprintf("%s.%s", base, ext)
	for counter := 1; exists(name); counter++ {
		name = fmt.Sprintf("%s-%d.%s", base, counter, ext)
	}
	return name
}

func sanitize(part string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(part, "-")
	return strings.Trim(cleaned, "-")
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
