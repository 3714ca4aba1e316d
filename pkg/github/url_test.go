package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuxiong/issue-insight/pkg/issue"
)

func TestParseRepositoryURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{
			name:      "https url",
			url:       "https://github.com/golang/go",
			wantOwner: "golang",
			wantName:  "go",
		},
		{
			name:      "http url",
			url:       "http://github.com/golang/go",
			wantOwner: "golang",
			wantName:  "go",
		},
		{
			name:      "trailing path segments",
			url:       "https://github.com/golang/go/issues/123",
			wantOwner: "golang",
			wantName:  "go",
		},
		{
			name:      "git suffix",
			url:       "https://github.com/golang/go.git",
			wantOwner: "golang",
			wantName:  "go",
		},
		{
			name:      "owner repo shorthand",
			url:       "golang/go",
			wantOwner: "golang",
			wantName:  "go",
		},
		{
			name:      "hyphenated names",
			url:       "cli/go-gh",
			wantOwner: "cli",
			wantName:  "go-gh",
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
		{
			name:    "bare word",
			url:     "golang",
			wantErr: true,
		},
		{
			name:    "whitespace",
			url:     "golang /go",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, name, err := ParseRepositoryURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				var analysisErr *issue.AnalysisError
				require.ErrorAs(t, err, &analysisErr)
				assert.Equal(t, issue.ErrorTypeValidation, analysisErr.Type)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
