package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := apperror.Validation("hours", "must be non-negative")
	assert.Equal(t, "hours: must be non-negative", err.Error())

	err = apperror.Conflict("entry is %s", "approved").WithEntry(42)
	assert.Equal(t, "entry is approved (entry 42)", err.Error())
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := apperror.Forbidden("self-approval is not allowed")
	wrapped := fmt.Errorf("decide: %w", base)

	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(wrapped))
	assert.True(t, apperror.Is(wrapped, apperror.KindForbidden))
	assert.False(t, apperror.Is(wrapped, apperror.KindConflict))

	got, ok := apperror.As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, apperror.Kind(""), apperror.KindOf(errors.New("boom")))
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("lock timeout")
	err := apperror.Wrap(apperror.KindConflict, cause, "batch aborted")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "batch aborted: lock timeout", err.Error())
}

func TestWithEntry_DoesNotMutateOriginal(t *testing.T) {
	base := apperror.NotFound("time entry", 7)
	withEntry := base.WithEntry(7)
	assert.Equal(t, int64(0), base.EntryID)
	assert.Equal(t, int64(7), withEntry.EntryID)
}

func TestEntryNotFound(t *testing.T) {
	err := apperror.EntryNotFound(9)
	assert.Equal(t, apperror.KindNotFound, err.Kind)
	assert.Equal(t, "time entry not found (entry 9)", err.Error())
}
