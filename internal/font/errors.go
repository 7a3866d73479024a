package font

import (
	"errors"
	"fmt"
)

// ErrFontNotFound is returned by a Provider when a font name cannot be
// resolved to a definition file.
var ErrFontNotFound = errors.New("font not found")

// DecodeError reports a malformed font definition.
type DecodeError struct {
	Source  string
	Line    int
	Message string
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("decoding font %s: line %d: %s", e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("decoding font %s: %s", e.Source, e.Message)
}
