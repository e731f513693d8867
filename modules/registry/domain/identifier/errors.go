package identifier

import "errors"

var (
	// ErrAllocationConflict means the store rejected an identifier that the
	// locking discipline should have made unique. Retryable; the creating
	// transaction must roll back entirely.
	ErrAllocationConflict = errors.New("identifier allocation conflict")

	ErrUnknownEntityType = errors.New("unknown entity type")
)
