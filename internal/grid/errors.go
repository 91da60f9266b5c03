package grid

import "fmt"

// RowNotFoundError signals an internal consistency violation: a dirty entry
// or lookup referenced an id absent from the Store. This is a
// programming-error-class fault; callers log it loudly, never swallow it.
type RowNotFoundError struct {
	ID int64
}

func (e *RowNotFoundError) Error() string {
	return fmt.Sprintf("row %d not found in record store", e.ID)
}

// UnknownFieldError signals an attempt to edit or update a column that is
// not one of the editable fields.
type UnknownFieldError struct {
	Field Field
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown editable field %q", string(e.Field))
}
