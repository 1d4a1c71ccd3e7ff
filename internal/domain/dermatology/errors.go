package dermatology

import "errors"

var (
	ErrNotAnImage       = errors.New("uploaded file is not an image")
	ErrImageTooLarge    = errors.New("uploaded image is too large")
	ErrEmptyImage       = errors.New("uploaded image is empty")
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrAnalysisFinished = errors.New("analysis has already finished")
)
