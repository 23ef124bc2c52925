package domain

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"
)

// structValidator is a process-wide validator.Validate instance. Per the
// library's own guidance it is safe for concurrent use and expensive to
// construct, so it is built once at package init rather than per call.
var structValidator = validator.New()

// ValidateDraft runs the shared struct-tag validator over the draft's
// always-required fields (symbol, variant, side, quantity) and then the
// variant-dependent cross-field rules that struct tags can't express
// cleanly (price required for LIMIT/IOC/FOK, stop price required for the
// conditional variants, all price-like fields strictly positive).
//
// A failure here means the draft never touches a book or trigger table and
// is not persisted; engine.Symbol still returns it as a REJECTED order
// carrying a newly assigned id.
func ValidateDraft(d OrderDraft) error {
	if err := structValidator.Struct(d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidOrder, verrs[0].Field())
		}
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	return d.Validate()
}
