package ports

import "context"

type PaymentStatus string

const (
	PaymentSucceeded             PaymentStatus = "succeeded"
	PaymentCanceled              PaymentStatus = "canceled"
	PaymentRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentProcessing            PaymentStatus = "processing"
)

// PaymentStatusProvider looks up the settlement state of a payment at the
// external gateway.
type PaymentStatusProvider interface {
	GetPaymentStatus(ctx context.Context, paymentRef string) (PaymentStatus, error)
}
