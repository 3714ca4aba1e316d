package github

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"

	"github.com/xuxiong/issue-insight/pkg/issue"
)

const issuesPerPage = 100

// maxFetchBuffer caps the extra issues fetched to compensate for pull
// requests discarded after retrieval.
const maxFetchBuffer = 200

// DefaultFetchEstimate is the advisory progress total used for
// unlimited fetches.
const DefaultFetchEstimate = 200

// Client wraps the GitHub REST API for repository and issue retrieval.
// It owns authentication, pagination and rate-limit backoff; callers
// never see pull requests or wire-level pagination.
type Client struct {
	rest restDoer

	// sleep is swappable in tests; defaults to time.Sleep
	sleep func(time.Duration)
}

// restDoer is the slice of go-gh's REST client used by this package
type restDoer interface {
	Get(path string, response interface{}) error
}

// NewClient creates a client authenticated from the gh CLI environment
// (GH_TOKEN / GITHUB_TOKEN or the ambient gh auth configuration).
func NewClient() (*Client, error) {
	rest, err := api.DefaultRESTClient()
	if err != nil {
		return nil, issue.NewAPIError("failed to create GitHub REST client", err)
	}
	return &Client{rest: rest, sleep: time.Sleep}, nil
}

// NewClientWithToken creates a client using an explicit token
func NewClientWithToken(token string) (*Client, error) {
	rest, err := api.NewRESTClient(api.ClientOptions{AuthToken: token})
	if err != nil {
		return nil, issue.NewAPIError("failed to create GitHub REST client", err)
	}
	return &Client{rest: rest, sleep: time.Sleep}, nil
}

// restRepository mirrors the GET /repos/{owner}/{repo} response fields we use
type restRepository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	HTMLURL       string `json:"html_url"`
	URL           string `json:"url"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

// restUser mirrors the user object embedded in issues and comments
type restUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	Type      string `json:"type"`
}

// restIssue mirrors the GET /repos/{owner}/{repo}/issues response items
type restIssue struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	HTMLURL   string     `json:"html_url"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	User      *restUser  `json:"user"`
	Assignees []restUser `json:"assignees"`
	Labels    []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Color       string `json:"color"`
		Description string `json:"description"`
	} `json:"labels"`
	Comments    int `json:"comments"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request"`
}

type restComment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      *restUser `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetRepository fetches repository metadata. It distinguishes a missing
// repository from a private one: private repositories are rejected
// because only public trackers are supported.
func (c *Client) GetRepository(owner, name string) (*Repository, error) {
	var repo restRepository
	path := fmt.Sprintf("repos/%s/%s", url.PathEscape(owner), url.PathEscape(name))

	if err := c.rest.Get(path, &repo); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
			return nil, issue.NewNotFoundError(owner + "/" + name)
		}
		return nil, issue.NewAPIError(fmt.Sprintf("failed to fetch repository %s/%s", owner, name), err)
	}

	if repo.Private {
		return nil, issue.NewPrivateRepositoryError(owner + "/" + name)
	}

	return &Repository{
		Owner:         repo.Owner.Login,
		Name:          repo.Name,
		URL:           repo.HTMLURL,
		APIURL:        repo.URL,
		IsPublic:      !repo.Private,
		DefaultBranch: repo.DefaultBranch,
	}, nil
}

// GetIssues fetches issues for a repository sorted by creation date
// descending, excluding pull requests before returning. A limit of 0
// fetches everything. When a limit is set, a buffer of extra raw items
// is fetched to compensate for discarded pull requests; the filter
// engine applies the authoritative limit later.
func (c *Client) GetIssues(owner, name string, state issue.IssueState, limit int) ([]issue.Issue, error) {
	if err := c.waitForRateLimit(); err != nil {
		return nil, err
	}

	apiState := string(state)
	if apiState == "" {
		apiState = string(issue.StateAll)
	}

	target := 0
	if limit > 0 {
		target = FetchBuffer(limit)
	}

	var issues []issue.Issue
	raw := 0
	for page := 1; ; page++ {
		path := fmt.Sprintf("repos/%s/%s/issues?state=%s&sort=created&direction=desc&per_page=%d&page=%d",
			url.PathEscape(owner), url.PathEscape(name), url.QueryEscape(apiState), issuesPerPage, page)

		var items []restIssue
		if err := c.rest.Get(path, &items); err != nil {
			return nil, c.classifyAPIError(err, owner+"/"+name, "failed to fetch issues for "+owner+"/"+name)
		}

		if len(items) == 0 {
			break
		}

		for _, item := range items {
			raw++
			if item.PullRequest != nil {
				continue
			}
			issues = append(issues, convertIssue(&item))
			if limit > 0 && len(issues) >= limit {
				return issues, nil
			}
		}

		if target > 0 && raw >= target {
			break
		}
		if len(items) < issuesPerPage {
			break
		}
	}

	if limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}
	return issues, nil
}

// GetCommentsForIssue fetches all comments for an issue. A retrieval
// failure yields an empty list, never an error: one unreadable issue
// must not abort the surrounding analysis.
func (c *Client) GetCommentsForIssue(owner, name string, number int) []issue.Comment {
	if err := c.waitForRateLimit(); err != nil {
		return []issue.Comment{}
	}

	var comments []issue.Comment
	for page := 1; ; page++ {
		path := fmt.Sprintf("repos/%s/%s/issues/%d/comments?per_page=%d&page=%d",
			url.PathEscape(owner), url.PathEscape(name), number, issuesPerPage, page)

		var items []restComment
		if err := c.rest.Get(path, &items); err != nil {
			return []issue.Comment{}
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			comment := issue.Comment{
				ID:        item.ID,
				Body:      item.Body,
				CreatedAt: item.CreatedAt,
				UpdatedAt: item.UpdatedAt,
				IssueID:   number,
			}
			if item.User != nil {
				comment.Author = convertUser(item.User)
			}
			comments = append(comments, comment)
		}

		if len(items) < issuesPerPage {
			break
		}
	}
	return comments
}

// GetRateLimitInfo returns the current core API quota
func (c *Client) GetRateLimitInfo() (*RateLimitInfo, error) {
	var resp struct {
		Resources struct {
			Core struct {
				Limit     int   `json:"limit"`
				Remaining int   `json:"remaining"`
				Reset     int64 `json:"reset"`
			} `json:"core"`
		} `json:"resources"`
	}

	if err := c.rest.Get("rate_limit", &resp); err != nil {
		return nil, issue.NewAPIError("failed to fetch rate limit info", err)
	}

	return &RateLimitInfo{
		Limit:     resp.Resources.Core.Limit,
		Remaining: resp.Resources.Core.Remaining,
		Reset:     time.Unix(resp.Resources.Core.Reset, 0),
	}, nil
}

// waitForRateLimit sleeps until quota reset when the rate limit is
// exhausted. This is a deliberate wait, not a timeout.
func (c *Client) waitForRateLimit() error {
	info, err := c.GetRateLimitInfo()
	if err != nil {
		// Quota inspection failing is not fatal; the real call will
		// surface any genuine API error.
		return nil
	}

	if info.Exhausted() {
		wait := time.Until(info.Reset)
		if wait > 0 {
			c.sleep(wait)
		}
	}
	return nil
}

// classifyAPIError maps HTTP failures onto the error taxonomy
func (c *Client) classifyAPIError(err error, repo, message string) error {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 403, 429:
			info, infoErr := c.GetRateLimitInfo()
			if infoErr == nil && info.Exhausted() {
				return issue.NewRateLimitError(info.Remaining, info.Limit, info.Reset)
			}
		case 404:
			return issue.NewNotFoundError(repo)
		}
	}
	return issue.NewAPIError(message, err)
}

// FetchBuffer returns how many raw issues to retrieve for a given
// result limit, leaving headroom for pull requests discarded after
// fetch: max(limit, min(limit*1.5, limit+20, 200)). The value is
// advisory; the filter engine enforces the real limit.
func FetchBuffer(limit int) int {
	buffer := limit + limit/2
	if limit+20 < buffer {
		buffer = limit + 20
	}
	if buffer > maxFetchBuffer {
		buffer = maxFetchBuffer
	}
	if buffer < limit {
		buffer = limit
	}
	return buffer
}

func convertUser(u *restUser) *issue.User {
	return &issue.User{
		ID:          u.ID,
		Username:    u.Login,
		DisplayName: u.Login,
		AvatarURL:   u.AvatarURL,
		IsBot:       u.Type == "Bot",
	}
}

func convertIssue(item *restIssue) issue.Issue {
	converted := issue.Issue{
		ID:            item.ID,
		Number:        item.Number,
		Title:         item.Title,
		URL:           item.HTMLURL,
		Body:          item.Body,
		State:         issue.IssueState(item.State),
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
		ClosedAt:      item.ClosedAt,
		CommentCount:  item.Comments,
		Comments:      []issue.Comment{},
		IsPullRequest: item.PullRequest != nil,
	}

	if item.User != nil {
		converted.Author = *convertUser(item.User)
	}

	for i := range item.Assignees {
		converted.Assignees = append(converted.Assignees, *convertUser(&item.Assignees[i]))
	}

	for _, label := range item.Labels {
		converted.Labels = append(converted.Labels, issue.Label{
			ID:          label.ID,
			Name:        label.Name,
			Color:       label.Color,
			Description: label.Description,
		})
	}

	return converted
}
