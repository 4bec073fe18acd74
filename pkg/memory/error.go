package memory

import "errors"

// ErrInvalidMaxMessages is returned when a window size below one is configured.
var ErrInvalidMaxMessages = errors.New("max messages must be greater than zero")
