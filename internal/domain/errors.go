package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// DataUnavailableError reports a missing market-data input (no oracle sample,
// empty book side). The cycle is aborted without state mutation and retried
// on the next tick.
type DataUnavailableError struct {
	What string // e.g. "oracle price", "bid side"
	Err  error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return "data unavailable [" + e.What + "]: " + e.Err.Error()
	}
	return "data unavailable [" + e.What + "]"
}

func (e *DataUnavailableError) IsRetriable() bool {
	return true
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// NewDataUnavailable wraps err as a retriable missing-data error.
func NewDataUnavailable(what string, err error) *DataUnavailableError {
	return &DataUnavailableError{What: what, Err: err}
}

// SubmissionError reports a failed order batch submission. Rejections and
// timeouts are retriable on the next accepted cycle with fresh inputs.
type SubmissionError struct {
	Reason    string // e.g. "rejected", "timeout", "stale reference"
	Err       error
	Retriable bool
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return "submission failed [" + e.Reason + "]: " + e.Err.Error()
	}
	return "submission failed [" + e.Reason + "]"
}

func (e *SubmissionError) IsRetriable() bool {
	return e.Retriable
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a retriable submission error.
func NewSubmissionError(reason string, err error) *SubmissionError {
	return &SubmissionError{Reason: reason, Err: err, Retriable: true}
}

// ConfigError represents a configuration error (never retriable, fatal at
// construction)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrNoLiquidity is returned when the L2-referenced quote mode finds an
	// empty book side. Retried next tick.
	ErrNoLiquidity = errors.New("no liquidity on book side")

	// ErrOracleUnavailable is returned when no oracle sample exists yet.
	ErrOracleUnavailable = errors.New("oracle price unavailable")

	// ErrMarketNotFound is returned when a configured symbol is unknown to
	// the venue. Not retriable.
	ErrMarketNotFound = errors.New("market not found")

	// ErrConnectionFailed is returned when the feed connection fails. It's
	// usually retriable.
	ErrConnectionFailed = errors.New("connection failed")
)
