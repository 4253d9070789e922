package eventstream

import "errors"

// ErrNilNoteEvent indicates a nil note event payload was provided to a publisher.
var ErrNilNoteEvent = errors.New("nil note event")
