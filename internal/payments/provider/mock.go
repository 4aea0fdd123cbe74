package provider

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tably/internal/payments/models"
	id "tably/pkg/domain"
)

// Mock is the synthetic provider: it never talks to an external service
// and settles everything locally. All ids and secrets it mints are
// prefixed `mock_` so they are recognizable in logs and fixtures.
type Mock struct{}

func (Mock) Name() models.ProviderName { return models.ProviderMock }

func (Mock) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResult, error) {
	intentID := id.IntentID(uuid.New())
	return &CreateIntentResult{
		IntentID:     intentID,
		Status:       models.StatusRequiresCapture,
		ClientSecret: "mock_" + intentID.String(),
	}, nil
}

func (Mock) Capture(ctx context.Context, req CaptureRequest) (*models.CaptureResult, error) {
	amount := req.Amount
	if amount == 0 {
		amount = req.Intent.Amount
	}
	return &models.CaptureResult{
		IntentID: req.Intent.ID,
		Status:   models.StatusSucceeded,
		Amount:   amount,
	}, nil
}

func (Mock) Refund(ctx context.Context, req RefundRequest) (*models.RefundResult, error) {
	return &models.RefundResult{
		ID:        "mock_re_" + uuid.NewString(),
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}, nil
}
