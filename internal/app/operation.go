package app

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks the CLI command being run. It is created in memory with
// ID=0 and only persisted by commands that change state.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

// NewOperation creates a new in-memory operation that succeeds unless marked otherwise.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the operation log.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}
