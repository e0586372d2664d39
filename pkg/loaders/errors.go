package loaders

import "errors"

var (
	// ErrUnsupportedFormat is returned for file types and encodings no loader handles
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMissingCommand is returned when a scene file omits a required command
	ErrMissingCommand = errors.New("missing required command")
)
