package github

import (
	"regexp"

	"github.com/xuxiong/issue-insight/pkg/issue"
)

var repoURLPattern = regexp.MustCompile(`^(?:https?://github\.com/)?([^/\s]+)/([^/\s]+?)(?:\.git)?(?:/.*)?$`)

// ParseRepositoryURL extracts owner and repository name from a GitHub
// repository URL or an owner/repo shorthand. Returns a validation error
// for anything else.
func ParseRepositoryURL(url string) (owner, name string, err error) {
	matches := repoURLPattern.FindStringSubmatch(url)
	if matches == nil {
		return "", "", issue.NewValidationError(
			"invalid repository URL format: expected https://github.com/owner/repo or owner/repo", nil)
	}
	return matches[1], matches[2], nil
}
