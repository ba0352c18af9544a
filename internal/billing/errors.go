package billing

import (
	"fmt"

	"github.com/buildflow/buildflow/internal/platform/httpx"
)

// errBillNotEditable rejects item changes once a bill has left draft.
var errBillNotEditable = fmt.Errorf("%w: bill is no longer editable", httpx.ErrValidation)

// TransitionError reports an illegal status move.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition bill from %s to %s", e.From, e.To)
}

// Unwrap maps transition errors to the validation problem class.
func (e *TransitionError) Unwrap() error {
	return httpx.ErrValidation
}
