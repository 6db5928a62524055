package wrapper

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

// ConstraintViolationError indicates an account relationship rule failed.
// Rule identifies the failed rule in InitializeLenderRules or DepositRules.
type ConstraintViolationError struct {
	Rule   string
	Reason string
}

func newConstraintViolationError(rule, reason string) ConstraintViolationError {
	return ConstraintViolationError{
		Rule:   rule,
		Reason: reason,
	}
}

func (e ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint %s violated: %s", e.Rule, e.Reason)
}

// IsConstraintViolation reports whether err is, or wraps, a
// ConstraintViolationError.
func IsConstraintViolation(err error) bool {
	var cve ConstraintViolationError
	return errors.As(err, &cve)
}

type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindConstraintViolation
	ErrorKindExternalCall
	ErrorKindPlatform
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindConstraintViolation:
		return "constraint_violation"
	case ErrorKindExternalCall:
		return "external_call"
	case ErrorKindPlatform:
		return "platform"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Classify maps an error returned by a Handler onto its failure kind. A
// transaction error is an external call failure only when an instruction ran
// and failed; transaction level rejections belong to the platform.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	if IsConstraintViolation(err) {
		return ErrorKindConstraintViolation
	}

	var txErr *solana.TransactionError
	if errors.As(err, &txErr) && txErr.InstructionError() != nil {
		return ErrorKindExternalCall
	}

	return ErrorKindPlatform
}
