package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownFont is returned when a FontID was not issued by the
	// FontSystem in use.
	ErrUnknownFont = errors.New("text: unknown font")
)

// MetricsError represents an invalid Metrics field.
type MetricsError struct {
	Field  string
	Reason string
}

func (e *MetricsError) Error() string {
	return "text: invalid metrics." + e.Field + ": " + e.Reason
}
