package courts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrFormatMismatch matches every FormatMismatchError.
	ErrFormatMismatch = errors.New("scrape format mismatch")
	// ErrConfiguration matches every ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
)

// FormatMismatchError reports scraped data whose shape no longer matches what
// the extractor expects. It is fatal for the (location, date) it came from.
type FormatMismatchError struct {
	Location Location
	Date     time.Time
	Reason   string
	Err      error
}

func (e *FormatMismatchError) Error() string {
	var b strings.Builder
	b.WriteString("format mismatch")
	if e.Location.Valid() {
		fmt.Fprintf(&b, " at %s", e.Location)
	}
	if !e.Date.IsZero() {
		fmt.Fprintf(&b, " on %s", e.Date.Format(time.DateOnly))
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FormatMismatchError) Unwrap() error { return e.Err }

func (e *FormatMismatchError) Is(target error) bool { return target == ErrFormatMismatch }

// FormatMismatch builds a FormatMismatchError with no origin attached yet.
func FormatMismatch(reason string, err error) error {
	return &FormatMismatchError{Reason: reason, Err: err}
}

// Attribute fills in the origin of any FormatMismatchError in err's chain
// that does not have one yet and returns err.
func Attribute(err error, loc Location, date time.Time) error {
	var fm *FormatMismatchError
	if errors.As(err, &fm) {
		if !fm.Location.Valid() {
			fm.Location = loc
		}
		if fm.Date.IsZero() {
			fm.Date = date
		}
	}
	return err
}

// ConfigurationError reports user-supplied settings that were rejected before
// any data was processed.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
