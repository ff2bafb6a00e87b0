package parser

import "fmt"

// DateTimeParseError means a header matched a grammar but none of the date
// and time layouts accepted its timestamp. It is never fatal.
type DateTimeParseError struct {
	Date string
	Time string
}

func (e *DateTimeParseError) Error() string {
	return fmt.Sprintf("unrecognized timestamp %q %q", e.Date, e.Time)
}
