package service

import "errors"

var (
	ErrMissingInput   = errors.New("not enough data to checkout")
	ErrInvalidCart    = errors.New("cart contains an invalid item")
	ErrPaymentSession = errors.New("payment session creation failed")
	ErrPersistence    = errors.New("persistence failed")
)

// IsInputError reports whether err should be shown to the caller as a bad request.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrInvalidCart)
}
