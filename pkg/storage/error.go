package storage

import "strconv"

// NotFoundError is returned when a note doesn't exist in the store.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	if e.ID == 0 {
		return "note not found"
	}

	return "note not found: " + strconv.FormatInt(e.ID, 10)
}
