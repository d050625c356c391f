package sheet

import "errors"

const (
	msgNoSheet     = "No sheet found in Excel"
	msgEmptySheet  = "Excel sheet is empty"
	msgUnreadable  = "Failed to parse Excel"
	msgNoHeaderRow = "Could not detect header row. Expected columns: "
)

// ParseError is a structural failure: the whole upload is rejected with a
// single message and no partial rows.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
