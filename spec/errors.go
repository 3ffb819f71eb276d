package spec

import "fmt"

// MalformedEntryError reports a specification entry that does not follow the
// feature grammar. One malformed entry invalidates its whole document.
type MalformedEntryError struct {
	Entry  string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed feature %q: %s", e.Entry, e.Reason)
}

// ConstantViolationError reports a re-assignment of an already-bound
// uppercase constant. This is a specification authoring bug and aborts the
// enclosing document's run.
type ConstantViolationError struct {
	Path string
}

func (e *ConstantViolationError) Error() string {
	return fmt.Sprintf("constant %s is already bound and cannot be re-assigned", e.Path)
}
