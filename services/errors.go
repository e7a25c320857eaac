package services

import (
	"errors"
)

// Sentinel errors of the service layer. Controllers translate them into the
// API error envelope; nothing in here retries on its own.
var (
	// ErrNoDueDeliveries signals a normal empty result: no subscription is
	// due tomorrow. It is not a failure.
	ErrNoDueDeliveries = errors.New("no due deliveries")

	// ErrDanglingReference is a data-integrity violation: a due subscription
	// references a customer/product/category/subcategory that no longer
	// exists. The aggregation run fails instead of silently dropping rows.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrIncompleteDeliveryLine rejects a booking payload whose line misses a
	// required field. The whole batch is rejected, nothing is committed.
	ErrIncompleteDeliveryLine = errors.New("incomplete delivery line")

	// ErrUnknownSubscription is returned when no line of a booking payload
	// resolves to a stored subscription.
	ErrUnknownSubscription = errors.New("unknown subscription")

	// ErrPersistenceFailure wraps storage errors of the booking transaction.
	// The storage layer rolls the whole batch back.
	ErrPersistenceFailure = errors.New("persistence failure")

	ErrNotFound           = errors.New("not found")
	ErrUnknownProduct     = errors.New("selected product is not available")
	ErrUnknownSubcategory = errors.New("selected subcategory is not available")
	ErrUnknownCustomer    = errors.New("customer not found")
	ErrDefaultProtected   = errors.New("default entries can not be deleted")
	ErrEmptyPayload       = errors.New("nothing to process")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrMissingDeliveryDate = errors.New("next_delivery must be set when the cycle type is none")
)
