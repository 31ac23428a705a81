package trade

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a write is attempted while another is confirming.
var ErrBusy = errors.New("another transaction is confirming")

// TxError reports a transaction that was mined but reverted, or whose
// confirmation could not be observed.
type TxError struct {
	Hash   string
	Method string
	Err    error
}

func (e *TxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transaction %s (%s) failed: %v", e.Hash, e.Method, e.Err)
	}
	return fmt.Sprintf("transaction %s (%s) reverted", e.Hash, e.Method)
}

func (e *TxError) Unwrap() error {
	return e.Err
}
