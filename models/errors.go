package models

import "fmt"

// Error codes used for internal error handling and status mapping.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeConfiguration = "CONFIG_ERROR"
	ErrCodeTimeout       = "SCRAPE_TIMEOUT"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash  = "BROWSER_CRASH"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// IsTransport reports whether the code belongs to the navigation/browser
// failure class.
func (e *ScrapeError) IsTransport() bool {
	switch e.Code {
	case ErrCodeTimeout, ErrCodeNavigation, ErrCodeBrowserCrash:
		return true
	}
	return false
}
