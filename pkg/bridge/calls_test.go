package bridge

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDispatchResponse(t *testing.T) {
	tests := []struct {
		name     string
		result   any
		err      error
		expected string
	}{
		{
			name:     "success with string",
			result:   "queued",
			err:      nil,
			expected: `["ok", "queued"]`,
		},
		{
			name:     "success with session id",
			result:   "8a6ee1f2-3a1c-4a05-9e2c-0f7c1f9a0b11",
			err:      nil,
			expected: `["ok", "8a6ee1f2-3a1c-4a05-9e2c-0f7c1f9a0b11"]`,
		},
		{
			name:     "success with nil result",
			result:   nil,
			err:      nil,
			expected: `["ok"]`,
		},
		{
			name:     "error response",
			result:   nil,
			err:      errors.New("no active target"),
			expected: `["error", "no active target"]`,
		},
		{
			name:     "success with string array",
			result:   []string{"a", "b"},
			err:      nil,
			expected: `["ok", ["a","b"]]`,
		},
		{
			name:     "success with int",
			result:   42,
			err:      nil,
			expected: `["ok", 42]`,
		},
		{
			name:     "success with map",
			result:   map[string]int{"count": 42},
			err:      nil,
			expected: `["ok", {"count":42}]`,
		},
		{
			name:     "error message with quotes is escaped",
			result:   nil,
			err:      errors.New(`target "x" not collectible`),
			expected: `["error", "target \"x\" not collectible"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDispatchResponse(tt.result, tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResponseFormatConsistency(t *testing.T) {
	t.Run("success responses start with ok", func(t *testing.T) {
		results := []any{
			"simple string",
			[]string{"a", "b"},
			nil,
			42,
		}

		for _, r := range results {
			got := formatDispatchResponse(r, nil)
			assert.True(t, strings.HasPrefix(got, `["ok"`), "got %q", got)
		}
	})

	t.Run("error responses start with error", func(t *testing.T) {
		got := formatDispatchResponse(nil, errors.New("test error"))
		assert.Equal(t, `["error", "test error"]`, got)
	})
}

func TestSetVersion(t *testing.T) {
	SetVersion("2.0.0")
	assert.Equal(t, "2.0.0", cfg.version)
}

func TestGetDispatcher_Unset(t *testing.T) {
	cfg.dispatcher = nil
	assert.Nil(t, GetDispatcher())
}
