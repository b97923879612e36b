package payment

import "errors"

var (
	ErrTransactionNotFound = errors.New("payment transaction not found")
	// ErrDuplicateTransaction signals that the gateway transaction ID already
	// exists. Callers treat this as a recovered condition and return the
	// existing record, since gateways retry webhooks at least once.
	ErrDuplicateTransaction = errors.New("duplicate gateway transaction")
	ErrTransactionFinal     = errors.New("transaction is final and cannot be modified")
)
