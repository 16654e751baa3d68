package mutate

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrStaleMove reports a drop whose source list/index no longer holds the dragged card.
var ErrStaleMove = errors.New("stale move")

var ErrMissingID = errors.New("missing id")

var ErrBlankTitle = errors.New("title must not be blank")

// ErrListIDPatch is returned when a patch tries to change a card's list outside MoveCard.
var ErrListIDPatch = errors.New("listId can only change through a move")

// ErrActivityRewrite is returned when a patch would drop or edit existing activity entries.
var ErrActivityRewrite = errors.New("activity entries are append-only")

type DuplicateIDError struct {
	Kind string
	ID   string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id: %s", e.Kind, e.ID)
}

func staleMove(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStaleMove, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
