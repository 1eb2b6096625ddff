package identity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEmployerSuspended = errors.New("employer account is suspended pending settlement of overdue payslips")
)

// BankDetailError names the party and field that failed validation so the
// caller can tell an employer-side problem from a worker-side one.
type BankDetailError struct {
	Party string
	Field string
	Msg   string
}

func (e *BankDetailError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Party, e.Field, e.Msg)
}
