package types

import "fmt"

// InputError reports content that could not be turned into document bytes,
// for example a reader that fails mid-submission. The pending queue is
// left untouched when it occurs.
type InputError struct {
	Name string // identifier the caller submitted under
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("notary: bad input for %q: %v", e.Name, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IntegrityError identifies the first block at which a chain fails
// validation. The chain is reported broken, never repaired.
type IntegrityError struct {
	Index  uint64
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("notary: chain integrity violated at block %d: %s", e.Index, e.Reason)
}
