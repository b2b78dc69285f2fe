package domain

import "errors"

// Trust engine errors.
var (
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrInvalidAdjustment   = errors.New("trust adjustment must be -1 or +1")
	ErrInvalidTrustScore   = errors.New("trust score must be between 1 and 5")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrPersistenceConflict = errors.New("concurrent update detected, retry")
)

// Account and identity errors.
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked or suspended")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidStatus      = errors.New("invalid account status")
	ErrInvalidProfile     = errors.New("name must be at least 2 characters and email must be valid")
	ErrForbidden          = errors.New("access forbidden")
)

// Catalog, cart and order errors.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidProduct     = errors.New("product requires a name and a positive price")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidCheckout    = errors.New("shipping address and payment method are required")
	ErrDuplicateCheckout  = errors.New("checkout already placed with this idempotency key")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrOrderNotReviewable = errors.New("order is not eligible for review")
	ErrAlreadyReviewed    = errors.New("order has already been reviewed")
	ErrEmptyReviewText    = errors.New("review text is required")
)
