package entities

import "fmt"

// RuleCode identifies which client-side rule rejected an action
type RuleCode string

const (
	CodeInvalidQuantity          RuleCode = "InvalidQuantity"
	CodeQuantityExceedsLimit     RuleCode = "QuantityExceedsLimit"
	CodeNoPartSelected           RuleCode = "NoPartSelected"
	CodeNoSourceDocumentSelected RuleCode = "NoSourceDocumentSelected"
	CodeDuplicatePart            RuleCode = "DuplicatePart"
	CodeInvalidPrice             RuleCode = "InvalidPrice"
	CodeIllegalTransition        RuleCode = "IllegalTransition"
)

// RuleError is an advisory rejection produced while composing a draft.
// The server re-validates everything on submit.
type RuleError struct {
	Code       RuleCode
	Message    string
	PartNumber PartNumber
	// Limit is the bound that was exceeded; only set for QuantityExceedsLimit.
	Limit Quantity
	// LimitSource names what produced Limit, e.g. "stock" or "remaining".
	LimitSource string
}

func (e *RuleError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Is matches on code so that errors.Is(err, ErrDuplicatePart) works for any part
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons
var (
	ErrInvalidQuantity          = &RuleError{Code: CodeInvalidQuantity}
	ErrQuantityExceedsLimit     = &RuleError{Code: CodeQuantityExceedsLimit}
	ErrNoPartSelected           = &RuleError{Code: CodeNoPartSelected}
	ErrNoSourceDocumentSelected = &RuleError{Code: CodeNoSourceDocumentSelected}
	ErrDuplicatePart            = &RuleError{Code: CodeDuplicatePart}
	ErrInvalidPrice             = &RuleError{Code: CodeInvalidPrice}
	ErrIllegalTransition        = &RuleError{Code: CodeIllegalTransition}
)

func NewInvalidQuantityError(message string) *RuleError {
	return &RuleError{Code: CodeInvalidQuantity, Message: message}
}

func NewQuantityExceedsLimitError(candidate, limit Quantity, source string) *RuleError {
	return &RuleError{
		Code:        CodeQuantityExceedsLimit,
		Message:     fmt.Sprintf("quantity %d exceeds %s limit of %d", candidate, source, limit),
		Limit:       limit,
		LimitSource: source,
	}
}

func NewDuplicatePartError(partNumber PartNumber) *RuleError {
	return &RuleError{
		Code:       CodeDuplicatePart,
		Message:    fmt.Sprintf("part %s is already on this document", partNumber),
		PartNumber: partNumber,
	}
}

func NewNoPartSelectedError() *RuleError {
	return &RuleError{Code: CodeNoPartSelected, Message: "select a part before adding a line"}
}

func NewNoSourceDocumentSelectedError(message string) *RuleError {
	if message == "" {
		message = "select a source document before adding a line"
	}
	return &RuleError{Code: CodeNoSourceDocumentSelected, Message: message}
}
