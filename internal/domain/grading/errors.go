package grading

import "errors"

// ErrMissingThrowID is returned when a summary carries no throw id.
var ErrMissingThrowID = errors.New("throw summary has no id")
