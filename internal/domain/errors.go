package domain

import "errors"

var (
	// Validation errors (bad caller input, retryable after correction)
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrNegativeShare        = errors.New("participant shares must be non-negative")
	ErrNotAMember           = errors.New("participant is not a member of the event")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrResponsibleMismatch  = errors.New("responsible total does not match amount")
	ErrPaidMismatch         = errors.New("paid total does not match amount")

	// Not-found errors (stale index or id)
	ErrEventNotFound   = errors.New("event not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrUserNotFound    = errors.New("user not found")

	// Conversion errors
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrRateUnavailable = errors.New("no exchange rate available")

	// ErrLedgerInconsistent reports that stored expenses no longer balance.
	// This is an internal fault, not a caller mistake.
	ErrLedgerInconsistent = errors.New("ledger is inconsistent: member balances do not sum to zero")
)

// IsValidation reports whether err is a caller-input validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrNegativeShare,
		ErrNotAMember,
		ErrDuplicateParticipant,
		ErrResponsibleMismatch,
		ErrPaidMismatch,
		ErrAmountTooLarge,
		ErrInvalidCurrency,
		ErrInvalidEventName,
		ErrInvalidEmail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
