package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateInputWithBase(t *testing.T) {
	base := time.Date(2024, 3, 15, 18, 45, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "iso date",
			input: "2024-01-15",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2024-01-15T10:30:00Z",
			want:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 with offset normalized to utc",
			input: "2024-01-15T10:30:00+02:00",
			want:  time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "today truncates to midnight",
			input: "@today",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "days back",
			input: "@today-30d",
			want:  time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "weeks back",
			input: "@today-2w",
			want:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "months back",
			input: "@today-1m",
			want:  time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "days forward",
			input: "@today+7d",
			want:  time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace",
			input: "  2024-01-15  ",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "next tuesday", wantErr: true},
		{name: "bad unit", input: "@today-3y", wantErr: true},
		{name: "bad anchor", input: "@yesterday", wantErr: true},
		{name: "slashes", input: "2024/01/15", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateInputWithBase(tt.input, base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}
