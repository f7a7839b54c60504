package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError rejects a mutating operation whose inputs are malformed
// (non-positive quantity, negative price). The operation leaves no partial state.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// InsufficientQuantityError rejects a sell that exceeds the currently held
// quantity. The holding is left untouched.
type InsufficientQuantityError struct {
	Symbol    string
	Requested decimal.Decimal
	Held      decimal.Decimal
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity for %s: requested %s, held %s",
		e.Symbol, e.Requested, e.Held)
}

// DataInconsistencyError is raised by ledger replay when a sell exhausts the
// open lot queue: the ledger sold more than it ever bought. The matcher never
// invents cost basis for the unmatched remainder; it reports the residue and
// lets callers decide whether to flag or ignore it.
type DataInconsistencyError struct {
	Symbol    string
	Unmatched decimal.Decimal
}

func (e *DataInconsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistency for %s: sell of %s unmatched by open lots",
		e.Symbol, e.Unmatched)
}
