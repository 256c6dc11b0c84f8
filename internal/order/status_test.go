package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressMonotonicAlongHappyPath(t *testing.T) {
	path := []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted}
	want := []int{20, 40, 60, 80, 100}

	prev := 0
	for i, s := range path {
		p, ok := s.Progress()
		assert.True(t, ok, "progress should be meaningful for %s", s)
		assert.Equal(t, want[i], p)
		assert.Greater(t, p, prev, "progress must increase from %s", s)
		prev = p
	}
}

func TestProgressCancelledHasNoBar(t *testing.T) {
	p, ok := StatusCancelled.Progress()
	assert.False(t, ok, "cancelled must not render a progress bar")
	assert.Equal(t, 0, p)
}

func TestStatusInfoCoversAllStates(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCancelled,
	} {
		info := s.Info()
		assert.NotEmpty(t, info.Label, "label for %s", s)
		assert.NotEmpty(t, info.EstimatedTime, "estimated time for %s", s)
		assert.NotEmpty(t, info.Description, "description for %s", s)
	}
	assert.Equal(t, VariantFinalNegative, StatusCancelled.Info().Variant)
	assert.Equal(t, VariantFinalPositive, StatusCompleted.Info().Variant)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"forward one step", StatusPending, StatusConfirmed, true},
		{"forward skipping steps", StatusPending, StatusReady, true},
		{"straight to completed", StatusPreparing, StatusCompleted, true},
		{"cancel from pending", StatusPending, StatusCancelled, true},
		{"cancel from ready", StatusReady, StatusCancelled, true},
		{"backward", StatusPreparing, StatusConfirmed, false},
		{"same status", StatusConfirmed, StatusConfirmed, false},
		{"leave completed", StatusCompleted, StatusCancelled, false},
		{"leave cancelled", StatusCancelled, StatusPending, false},
		{"unknown target", StatusPending, Status("shipped"), false},
		{"unknown source", Status("shipped"), StatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}
