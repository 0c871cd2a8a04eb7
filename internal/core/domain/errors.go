package domain

import "fmt"

// Entity kinds used in reference-validation failures.
const (
	KindUser    = "user"
	KindProduct = "product"
	KindEngine  = "engine"
	KindColor   = "color"
	KindTrim    = "trim"
)

// NotFoundError reports that a referenced entity does not exist in its store.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}
