package omise

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

type chargeFetcher func(chargeID string) (*omise.Charge, error)

// Provider reports the settlement state of an Omise charge. The payment
// reference stored on bookings and orders is the charge id.
type Provider struct {
	fetch chargeFetcher
}

var _ ports.PaymentStatusProvider = (*Provider)(nil)

func NewProvider(publicKey, secretKey string) (*Provider, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}

	return &Provider{fetch: func(chargeID string) (*omise.Charge, error) {
		ch := &omise.Charge{}
		if err := client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
			return nil, err
		}
		return ch, nil
	}}, nil
}

func (p *Provider) GetPaymentStatus(ctx context.Context, paymentRef string) (ports.PaymentStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ch, err := p.fetch(paymentRef)
	if err != nil {
		return "", fmt.Errorf("retrieve charge %s: %w", paymentRef, err)
	}
	return statusOf(ch)
}

func statusOf(ch *omise.Charge) (ports.PaymentStatus, error) {
	switch string(ch.Status) {
	case "successful":
		return ports.PaymentSucceeded, nil
	case "pending":
		return ports.PaymentProcessing, nil
	case "failed":
		return ports.PaymentRequiresPaymentMethod, nil
	case "reversed", "expired":
		return ports.PaymentCanceled, nil
	}
	return "", fmt.Errorf("charge %s has unknown status %q", ch.ID, ch.Status)
}
