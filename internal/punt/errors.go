package punt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDescription is a caller error: every play needs text to classify.
	ErrEmptyDescription = errors.New("empty play description")

	// ErrAmbiguousOutcome means the rule cascade left zero or several votes.
	ErrAmbiguousOutcome = errors.New("ambiguous punt outcome")
)

// AmbiguousError carries the votes still on after the cascade.
type AmbiguousError struct {
	Votes []Outcome
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Votes))
	for i, o := range e.Votes {
		names[i] = string(o)
	}
	return fmt.Sprintf("%s: votes=[%s]", ErrAmbiguousOutcome, strings.Join(names, ","))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguousOutcome }
