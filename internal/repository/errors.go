package repository

import "errors"

// ErrNotProcessing is returned when an analysis status transition targets a
// row that is missing or no longer processing.
var ErrNotProcessing = errors.New("analysis is not in processing state")
