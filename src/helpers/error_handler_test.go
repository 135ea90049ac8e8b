package helpers

import (
	"errors"
	"testing"
	"time"

	"perfmon-dashboard/src/logger"

	"github.com/longbridgeapp/assert"
)

func newTestHandler() (*ErrorHandler, *[]time.Duration) {
	var delays []time.Duration
	h := NewErrorHandler(logger.NewNop())
	h.BaseDelay = 10 * time.Millisecond
	h.sleep = func(d time.Duration) { delays = append(delays, d) }
	return h, &delays
}

func TestExecuteWithRetry_SucceedsAfterFailures(t *testing.T) {
	h, delays := newTestHandler()

	calls := 0
	err := h.ExecuteWithRetry("connect", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 5)

	assert.Nil(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *delays)
	assert.Equal(t, 0, h.ErrorCount)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	h, delays := newTestHandler()
	cause := errors.New("connection refused")

	calls := 0
	err := h.ExecuteWithRetry("connect", func() error {
		calls++
		return cause
	}, 3)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, len(*delays))
	assert.Equal(t, 1, h.ErrorCount)

	var dbErr *DatabaseError
	assert.True(t, errors.As(err, &dbErr))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "connect failed: connection refused", err.Error())
}

func TestExecuteWithRetry_AtLeastOneAttempt(t *testing.T) {
	h, delays := newTestHandler()

	calls := 0
	err := h.ExecuteWithRetry("save", func() error {
		calls++
		return errors.New("disk full")
	}, 0)

	assert.False(t, err == nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, len(*delays))
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("no such file")

	loadErr := NewDataLoadError("a.csv", "could not find PerfMon log at a.csv", cause)
	assert.Equal(t, "a.csv", loadErr.Path)
	assert.Equal(t, "could not find PerfMon log at a.csv: no such file", loadErr.Error())
	assert.True(t, errors.Is(loadErr, cause))

	cellErr := NewCellParseError(4, "% CPU Usage", "N/A", cause)
	assert.Equal(t, 4, cellErr.Row)
	assert.Equal(t, `row 4, column "% CPU Usage": cannot parse "N/A": no such file`, cellErr.Error())

	cfgErr := NewConfigurationError("bad port", nil)
	assert.Equal(t, "bad port", cfgErr.Error())
	assert.Nil(t, errors.Unwrap(cfgErr))
}

func TestFileSizeCeilingMB(t *testing.T) {
	limit, ok := FileSizeCeilingMB()
	assert.True(t, limit >= minFileLimitMB)
	if !ok {
		assert.Equal(t, fallbackFileLimitMB, limit)
	}
}
