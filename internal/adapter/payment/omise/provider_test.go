package omise

import (
	"context"
	"errors"
	"testing"

	"github.com/omise/omise-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

func stubProvider(status string, err error) *Provider {
	return &Provider{fetch: func(chargeID string) (*omise.Charge, error) {
		if err != nil {
			return nil, err
		}
		ch := &omise.Charge{Status: omise.ChargeStatus(status)}
		ch.ID = chargeID
		return ch, nil
	}}
}

func TestProvider_GetPaymentStatus(t *testing.T) {
	tests := []struct {
		charge string
		want   ports.PaymentStatus
	}{
		{"successful", ports.PaymentSucceeded},
		{"pending", ports.PaymentProcessing},
		{"failed", ports.PaymentRequiresPaymentMethod},
		{"reversed", ports.PaymentCanceled},
		{"expired", ports.PaymentCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.charge, func(t *testing.T) {
			got, err := stubProvider(tt.charge, nil).GetPaymentStatus(context.Background(), "chrg_test_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_UnknownStatus(t *testing.T) {
	_, err := stubProvider("mystery", nil).GetPaymentStatus(context.Background(), "chrg_test_1")
	assert.Error(t, err)
}

func TestProvider_GatewayError(t *testing.T) {
	_, err := stubProvider("", errors.New("503")).GetPaymentStatus(context.Background(), "chrg_test_1")
	assert.ErrorContains(t, err, "chrg_test_1")
}

func TestProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stubProvider("successful", nil).GetPaymentStatus(ctx, "chrg_test_1")
	assert.ErrorIs(t, err, context.Canceled)
}
