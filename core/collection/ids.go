package collection

import "github.com/google/uuid"

// newID generates the opaque unique identifier attached to created records.
// Every resource uses the same collision-resistant scheme.
var newID = func() string {
	return uuid.New().String()
}
