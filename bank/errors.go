package bank

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure a public operation can return wraps exactly one
// of these sentinels, so callers branch with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrAccess            = errors.New("access denied")
	ErrBusinessRule      = errors.New("business rule violated")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Error is a rejected bank operation: a kind, a fixed message code and a
// human-readable message. It never carries a stack trace.
type Error struct {
	kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, code, message string) *Error {
	return &Error{kind: kind, Code: code, Message: message}
}

// Message catalog. Codes are stable; the text is presentation only.
var (
	errPINMismatch      = newError(ErrValidation, "PIN_MISMATCH", "entered PIN does not match the current one")
	errPINInvalid       = newError(ErrValidation, "PIN_INVALID", "PIN must be a string of 4 characters")
	errPINFormatInvalid = newError(ErrValidation, "PIN_FORMAT_INVALID", "PIN must consist of digits only")
	errNameInvalid      = newError(ErrValidation, "NAME_INVALID", "first and last name must be Russian letters without special characters")
	errAmountNegative   = newError(ErrValidation, "AMOUNT_NEGATIVE", "amount must be positive")
	errDepositNegative  = newError(ErrValidation, "DEPOSIT_AMOUNT_NEGATIVE", "deposit amount must be positive")
	errCashbackNegative = newError(ErrValidation, "CASHBACK_NEGATIVE", "purchase cashback rate must be positive")
	errInterestNegative = newError(ErrValidation, "INTEREST_NEGATIVE", "account interest rate must be positive")
	errPayNegative      = newError(ErrValidation, "PAY_AMOUNT_NEGATIVE", "purchase amount must be positive")
	errInvalidMCC       = newError(ErrValidation, "INVALID_MCC", "invalid merchant category code (MCC)")

	errRecipientNotFound = newError(ErrNotFound, "RECIPIENT_NOT_FOUND", "wrong card number, no such card exists")

	errCardClosed                = newError(ErrAccess, "CARD_CLOSED", "card is closed or blocked, the operation cannot be performed")
	errAccountNotLinked          = newError(ErrAccess, "ACCOUNT_NOT_LINKED", "card is not linked to an account")
	errBankNotLinked             = newError(ErrAccess, "BANK_NOT_LINKED", "card is not linked to a bank")
	errRecipientAccountNotLinked = newError(ErrAccess, "RECIPIENT_ACCOUNT_NOT_LINKED", "recipient card is not linked to an account")
	errRecipientCardClosed       = newError(ErrAccess, "RECIPIENT_CARD_CLOSED", "recipient card is closed or blocked, the operation cannot be performed")

	errDepositLimitExceeded  = newError(ErrBusinessRule, "DEPOSIT_LIMIT_EXCEEDED", "deposit limit exceeded, the card is blocked pending review")
	errTransferLimitExceeded = newError(ErrBusinessRule, "TRANSFER_LIMIT_EXCEEDED", "suspected fraudulent operation, the card is blocked pending review")
	errCashbackLimit         = newError(ErrBusinessRule, "CASHBACK_LIMIT", "cashback rate is too high, possibly a technical error, the card is blocked pending review")
	errTransferToSelf        = newError(ErrBusinessRule, "TRANSFER_TO_SELF", "cannot transfer money to yourself")
	errUserConflict          = newError(ErrBusinessRule, "USER_CONFLICT", "a user with this phone number is already registered")
	errTooManyCards          = newError(ErrBusinessRule, "TOO_MANY_DEBIT_CARDS", "the user already has five debit cards")
	errPurchaseLimitExceeded = newError(ErrBusinessRule, "PURCHASE_LIMIT_EXCEEDED", "purchase amount exceeds the limit, the operation is blocked pending review")
	errSavingPayment         = newError(ErrBusinessRule, "PAYMENT_NOT_ALLOWED_FOR_SAVING", "purchases cannot be charged to a saving account")
	errSavingRateTooHigh     = newError(ErrBusinessRule, "SAVING_RATE_TOO_HIGH", "saving rate is too high, possibly a technical error, the card is blocked pending review")
	errInterestNotSupported  = newError(ErrBusinessRule, "INTEREST_NOT_SUPPORTED", "interest is accrued on saving cards only")

	errInsufficientForPayment  = newError(ErrInsufficientFunds, "INSUFFICIENT_FUNDS_FOR_PAYMENT", "not enough money for the payment")
	errInsufficientForTransfer = newError(ErrInsufficientFunds, "INSUFFICIENT_FUNDS_FOR_TRANSFER", "not enough money to make the transfer")
)

func errMCCForbidden(mcc string) *Error {
	return newError(ErrBusinessRule, "MCC_FORBIDDEN", fmt.Sprintf("payment declined, purchases in category %s are forbidden by the bank", mcc))
}

func errPaymentSystemNotSupported(system string) *Error {
	return newError(ErrValidation, "PAYMENT_SYSTEM_NOT_SUPPORTED", fmt.Sprintf("payment system %s is not supported by the bank", system))
}
