package engine

import "fmt"

// ContractError is the panic value raised when a caller breaks an engine
// precondition: stepping an empty queue, building an attack with invalid
// flags, selecting an unsupported decomposition mode. These are bugs in
// the driver, not gameplay outcomes.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("engine contract violated in %s: %s", e.Op, e.Msg)
}

func require(cond bool, op, format string, args ...any) {
	if !cond {
		panic(&ContractError{Op: op, Msg: fmt.Sprintf(format, args...)})
	}
}
