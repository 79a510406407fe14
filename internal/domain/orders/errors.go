package orders

import "errors"

var (
	ErrValidation  = errors.New("validation error") // 400
	ErrNotFound    = errors.New("order not found")  // 404
	ErrRateLimited = errors.New("rate limited")     // 429
	ErrDelivery    = errors.New("order not delivered")
)
