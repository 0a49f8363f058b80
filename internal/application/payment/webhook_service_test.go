package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type webhookFixture struct {
	*paymentFixture
	eventRepo *MockWebhookEventRepository
	svc       *WebhookService
}

func newWebhookFixture() *webhookFixture {
	base := newPaymentFixture()
	f := &webhookFixture{
		paymentFixture: base,
		eventRepo:      new(MockWebhookEventRepository),
	}
	f.svc = NewWebhookService(f.eventRepo, f.paymentRepo, base.svc, f.gateway, zap.NewNop())
	return f
}

func capturedEventBody(paymentID, sessionID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"status":"captured","method":"upi"}}}}`,
		paymentID, sessionID))
}

func TestWebhookService_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("captured event settles the order", func(t *testing.T) {
		f := newWebhookFixture()
		o := mustGatewayOrder(t, userID)
		record := mustPaymentRecord(t, o.ID, "order_rzp_1")
		record.RecordAttempt("pay_1", "sig")
		body := capturedEventBody("pay_1", "order_rzp_1")

		f.eventRepo.On("Create", ctx, mock.MatchedBy(func(e *payment.WebhookEvent) bool {
			return e.EventID == "evt_1" && e.EventType == "payment.captured" && e.Payload == string(body)
		})).Return(nil)
		f.gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)
		f.paymentRepo.On("FindByPaymentID", ctx, "pay_1").Return(record, nil)
		f.paymentRepo.On("Update", ctx, record).Return(nil)
		f.logRepo.On("Create", ctx, mock.MatchedBy(func(l *payment.PaymentLog) bool {
			return l.ToStatus == payment.StatusCaptured && l.Source == "webhook"
		})).Return(nil)
		f.orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orderRepo.On("Update", ctx, o).Return(nil)
		f.stock.On("ConfirmStock", ctx, o.ID).Return(nil)
		f.eventRepo.On("Update", ctx, mock.MatchedBy(func(e *payment.WebhookEvent) bool {
			return e.Processed && e.Error == ""
		})).Return(nil)

		err := f.svc.Handle(ctx, "evt_1", body, "whsig")
		require.NoError(t, err)
		assert.Equal(t, payment.StatusCaptured, record.Status)
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
		f.eventRepo.AssertExpectations(t)
	})

	t.Run("duplicate delivery is acknowledged without reprocessing", func(t *testing.T) {
		f := newWebhookFixture()
		body := capturedEventBody("pay_1", "order_rzp_1")

		f.eventRepo.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		err := f.svc.Handle(ctx, "evt_1", body, "whsig")
		require.NoError(t, err)
		f.gateway.AssertNotCalled(t, "VerifyWebhookSignature", mock.Anything, mock.Anything)
		f.paymentRepo.AssertNotCalled(t, "FindByPaymentID", mock.Anything, mock.Anything)
	})

	t.Run("bad signature is retained but rejected", func(t *testing.T) {
		f := newWebhookFixture()
		body := capturedEventBody("pay_1", "order_rzp_1")

		f.eventRepo.On("Create", ctx, mock.Anything).Return(nil)
		f.gateway.On("VerifyWebhookSignature", body, "forged").Return(false)
		f.eventRepo.On("Update", ctx, mock.MatchedBy(func(e *payment.WebhookEvent) bool {
			return !e.Processed && e.Error != ""
		})).Return(nil)

		err := f.svc.Handle(ctx, "evt_1", body, "forged")
		assert.ErrorIs(t, err, shared.ErrSignatureInvalid)
		f.paymentRepo.AssertNotCalled(t, "FindByPaymentID", mock.Anything, mock.Anything)
	})

	t.Run("malformed body is still persisted for audit", func(t *testing.T) {
		f := newWebhookFixture()
		body := []byte("not json at all")

		var stored *payment.WebhookEvent
		f.eventRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*payment.WebhookEvent)
		}).Return(nil)
		f.gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)
		f.eventRepo.On("Update", ctx, mock.Anything).Return(nil)

		err := f.svc.Handle(ctx, "", body, "whsig")
		require.Error(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "not json at all", stored.Payload)
		assert.Len(t, stored.EventID, 64, "empty event id falls back to the body hash")
	})

	t.Run("webhook arriving before the browser callback resolves by session id", func(t *testing.T) {
		f := newWebhookFixture()
		o := mustGatewayOrder(t, userID)
		record := mustPaymentRecord(t, o.ID, "order_rzp_1")
		body := capturedEventBody("pay_1", "order_rzp_1")

		f.eventRepo.On("Create", ctx, mock.Anything).Return(nil)
		f.gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)
		f.paymentRepo.On("FindByPaymentID", ctx, "pay_1").Return(nil, shared.ErrNotFound)
		f.paymentRepo.On("FindBySessionID", ctx, "order_rzp_1").Return(record, nil)
		f.paymentRepo.On("Update", ctx, record).Return(nil)
		f.logRepo.On("Create", ctx, mock.Anything).Return(nil)
		f.orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orderRepo.On("Update", ctx, o).Return(nil)
		f.stock.On("ConfirmStock", ctx, o.ID).Return(nil)
		f.eventRepo.On("Update", ctx, mock.Anything).Return(nil)

		err := f.svc.Handle(ctx, "evt_1", body, "whsig")
		require.NoError(t, err)
		assert.Equal(t, "pay_1", record.RazorpayPaymentID)
		assert.Equal(t, payment.StatusCaptured, record.Status)
	})

	t.Run("stale failed event never regresses a captured payment", func(t *testing.T) {
		f := newWebhookFixture()
		o := mustGatewayOrder(t, userID)
		record := mustPaymentRecord(t, o.ID, "order_rzp_1")
		record.RecordAttempt("pay_1", "sig")
		_, err := record.Transition(payment.StatusCaptured)
		require.NoError(t, err)

		body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_rzp_1","status":"failed"}}}}`)

		f.eventRepo.On("Create", ctx, mock.Anything).Return(nil)
		f.gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)
		f.paymentRepo.On("FindByPaymentID", ctx, "pay_1").Return(record, nil)
		f.eventRepo.On("Update", ctx, mock.MatchedBy(func(e *payment.WebhookEvent) bool {
			return e.Processed
		})).Return(nil)

		err = f.svc.Handle(ctx, "evt_2", body, "whsig")
		require.NoError(t, err)
		assert.Equal(t, payment.StatusCaptured, record.Status)
		f.logRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unhandled event types are acknowledged", func(t *testing.T) {
		f := newWebhookFixture()
		body := []byte(`{"event":"refund.created","payload":{"payment":{"entity":{"id":"pay_9"}}}}`)

		f.eventRepo.On("Create", ctx, mock.Anything).Return(nil)
		f.gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)
		f.eventRepo.On("Update", ctx, mock.MatchedBy(func(e *payment.WebhookEvent) bool {
			return e.Processed
		})).Return(nil)

		err := f.svc.Handle(ctx, "evt_3", body, "whsig")
		require.NoError(t, err)
		f.paymentRepo.AssertNotCalled(t, "FindByPaymentID", mock.Anything, mock.Anything)
	})
}
