package provider

import (
	"context"

	"tably/internal/payments/models"
	dErrors "tably/pkg/domain-errors"
)

// unimplemented stands in for real provider SDK integrations. The typed
// request and response contracts exist; the calls do not.
type unimplemented struct {
	name models.ProviderName
}

func (p unimplemented) Name() models.ProviderName { return p.name }

func (p unimplemented) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResult, error) {
	return nil, p.err("create intent")
}

func (p unimplemented) Capture(ctx context.Context, req CaptureRequest) (*models.CaptureResult, error) {
	return nil, p.err("capture")
}

func (p unimplemented) Refund(ctx context.Context, req RefundRequest) (*models.RefundResult, error) {
	return nil, p.err("refund")
}

func (p unimplemented) err(op string) error {
	return dErrors.Newf(dErrors.CodeNotImplemented, "%s %s is not implemented", p.name, op)
}
