package github

import (
	"time"
)

// Repository describes a GitHub repository selected for analysis
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	APIURL        string `json:"api_url"`
	IsPublic      bool   `json:"is_public"`
	DefaultBranch string `json:"default_branch"`
}

// FullName returns the owner/name form of the repository
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// RateLimitInfo describes the current core API quota
type RateLimitInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// Exhausted reports whether no quota remains
func (r *RateLimitInfo) Exhausted() bool {
	return r.Remaining == 0
}

// Low reports whether less than 10% of the quota remains
func (r *RateLimitInfo) Low() bool {
	return r.Limit > 0 && r.Remaining*10 < r.Limit
}
