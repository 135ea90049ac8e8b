package helpers

import (
	"fmt"
	"perfmon-dashboard/src/logger"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type PerfmonError struct {
	Message string
	Cause   error
}

func (e *PerfmonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PerfmonError) Unwrap() error {
	return e.Cause
}

// DataLoadError means the input file could not be turned into a table.
// It is fatal at startup.
type DataLoadError struct {
	PerfmonError
	Path string
}

// CellParseError describes a single cell that is not a number. The parser
// counts these and drops the sample; it never returns one.
type CellParseError struct {
	PerfmonError
	Row     int
	Column  string
	Content string
}

type ConfigurationError struct{ PerfmonError }
type DatabaseError struct{ PerfmonError }

// -----------------------------------------------------------------------------

func NewDataLoadError(path, message string, cause error) *DataLoadError {
	return &DataLoadError{
		PerfmonError: PerfmonError{Message: message, Cause: cause},
		Path:         path,
	}
}

func NewCellParseError(row int, column, content string, cause error) *CellParseError {
	return &CellParseError{
		PerfmonError: PerfmonError{
			Message: fmt.Sprintf("row %d, column %q: cannot parse %q", row, column, content),
			Cause:   cause,
		},
		Row:     row,
		Column:  column,
		Content: content,
	}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{PerfmonError{Message: message, Cause: cause}}
}

func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{PerfmonError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount int
	BaseDelay  time.Duration
	sleep      func(time.Duration)
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{
		Logger:    log,
		BaseDelay: time.Second,
		sleep:     time.Sleep,
	}
}

// -----------------------------------------------------------------------------

// ExecuteWithRetry runs fn up to maxRetries times with exponential backoff.
// The final failure is wrapped in a DatabaseError.
func (e *ErrorHandler) ExecuteWithRetry(operation string, fn func() error, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			if e.ErrorCount > 0 {
				e.ErrorCount--
			}
			return nil
		}
		lastErr = err

		if attempt == maxRetries-1 {
			break
		}

		e.Logger.Warning("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)
		e.sleep(e.BaseDelay * time.Duration(1<<attempt))
	}

	e.ErrorCount++
	e.Logger.Error("%s failed after %d attempts: %v", operation, maxRetries, lastErr)
	return NewDatabaseError(fmt.Sprintf("%s failed", operation), lastErr)
}
