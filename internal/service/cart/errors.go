package cart

import (
	"errors"
	"fmt"
)

// ErrPopupBlocked is returned by an Opener that could not show the document.
var ErrPopupBlocked = errors.New("document viewer unavailable")

// ValidationError rejects an operation before any network call.
type ValidationError struct {
	Key Key
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rejected: %s", e.Key)
}
