package payments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/internal/orders"
	"github.com/adebayoakin/gearmart-backend/pkg/auth"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/enums"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
	"github.com/adebayoakin/gearmart-backend/pkg/pagination"
	"github.com/adebayoakin/gearmart-backend/pkg/paystack"
)

type fakeOrdersRepo struct {
	orders map[uuid.UUID]*models.Order

	// Remaining TryMarkPaid calls that fail before the update runs.
	markPaidFailures int
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.TransactionReference != nil && *o.TransactionReference == reference {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) SetTransactionReference(ctx context.Context, orderID uuid.UUID, reference string) error {
	if o, ok := f.orders[orderID]; ok {
		o.TransactionReference = &reference
	}
	return nil
}

func (f *fakeOrdersRepo) TryMarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error) {
	if f.markPaidFailures > 0 {
		f.markPaidFailures--
		return false, errors.New("connection reset by peer")
	}
	o, ok := f.orders[orderID]
	if !ok || o.PaymentStatus != enums.PaymentStatusPending {
		return false, nil
	}
	o.PaymentStatus = enums.PaymentStatusPaid
	o.Status = enums.OrderStatusProcessing
	o.PaidAt = &paidAt
	return true, nil
}

func (f *fakeOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (f *fakeOrdersRepo) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return nil, nil
}

type fakeGateway struct {
	initResult    *paystack.InitializeResult
	initErr       error
	verifyResult  *paystack.Transaction
	verifyErr     error
	validSig      string
	initRequests  []paystack.InitializeRequest
	verifyCalls   int
}

func (g *fakeGateway) InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	g.initRequests = append(g.initRequests, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResult != nil {
		return g.initResult, nil
	}
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/abc",
		AccessCode:       "abc",
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResult, nil
}

func (g *fakeGateway) ValidateSignature(payload []byte, signature string) bool {
	return signature == g.validSig
}

func (g *fakeGateway) CallbackURL() string { return "https://shop.example.com/payment/callback" }

type fakeIdempotency struct {
	seen map[string]bool
}

func (f *fakeIdempotency) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdempotency) IdempotencyKey(scope, id string) string {
	return "gm:idempotency:" + scope + ":" + id
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	f.sent = append(f.sent, order.OrderNumber)
	return nil
}

type paymentsFixture struct {
	svc     Service
	repo    *fakeOrdersRepo
	gateway *fakeGateway
	mailer  *fakeMailer
	order   *models.Order
}

func newPaymentsFixture(t *testing.T) *paymentsFixture {
	t.Helper()
	repo := newFakeOrdersRepo()
	gateway := &fakeGateway{validSig: "good-signature"}
	mailer := &fakeMailer{}
	svc, err := NewService(repo, gateway, &fakeIdempotency{}, mailer, nil,
		logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "GM-20260828-ABC123",
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Currency:      enums.CurrencyNGN,
		Subtotal:      decimal.NewFromInt(5000),
		Total:         decimal.NewFromInt(5000),
		Email:         "ada@example.com",
		FirstName:     "Ada",
		LastName:      "Obi",
	}
	repo.orders[order.ID] = order

	return &paymentsFixture{svc: svc, repo: repo, gateway: gateway, mailer: mailer, order: order}
}

func (fx *paymentsFixture) settledTransaction(reference string) *paystack.Transaction {
	paidAt := time.Now().UTC()
	return &paystack.Transaction{
		ID:         42,
		Status:     paystack.StatusSuccess,
		Reference:  reference,
		AmountKobo: 500000,
		Currency:   "NGN",
		PaidAt:     &paidAt,
	}
}

func TestInitializePersistsReference(t *testing.T) {
	fx := newPaymentsFixture(t)

	result, err := fx.svc.Initialize(context.Background(), fx.order.OrderNumber, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.AuthorizationURL)
	require.NotNil(t, fx.order.TransactionReference)
	require.Equal(t, result.Reference, *fx.order.TransactionReference)

	// Amount is converted to kobo.
	require.Equal(t, int64(500000), fx.gateway.initRequests[0].AmountKobo)
}

func TestInitializeOwnership(t *testing.T) {
	fx := newPaymentsFixture(t)
	owner := uuid.New()
	fx.order.UserID = &owner

	_, err := fx.svc.Initialize(context.Background(), fx.order.OrderNumber, nil)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = fx.svc.Initialize(context.Background(), fx.order.OrderNumber,
		&auth.AccessTokenPayload{UserID: uuid.New()})
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = fx.svc.Initialize(context.Background(), fx.order.OrderNumber,
		&auth.AccessTokenPayload{UserID: owner})
	require.NoError(t, err)
}

func TestInitializeAlreadyPaid(t *testing.T) {
	fx := newPaymentsFixture(t)
	fx.order.PaymentStatus = enums.PaymentStatusPaid

	_, err := fx.svc.Initialize(context.Background(), fx.order.OrderNumber, nil)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestInitializeGatewayFailureLeavesOrderUntouched(t *testing.T) {
	fx := newPaymentsFixture(t)
	fx.gateway.initErr = pkgerrors.New(pkgerrors.CodeDependency, "Invalid key")

	_, err := fx.svc.Initialize(context.Background(), fx.order.OrderNumber, nil)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	require.Nil(t, fx.order.TransactionReference)
}

func TestVerifyMarksPaidOnce(t *testing.T) {
	fx := newPaymentsFixture(t)
	ref := "GM-20260828-ABC123-deadbeef"
	fx.order.TransactionReference = &ref
	fx.gateway.verifyResult = fx.settledTransaction(ref)

	result, err := fx.svc.Verify(context.Background(), ref)
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.Equal(t, enums.PaymentStatusPaid, result.Order.PaymentStatus)
	require.Equal(t, enums.OrderStatusProcessing, result.Order.Status)
	require.Len(t, fx.mailer.sent, 1)

	firstPaidAt := *fx.order.PaidAt

	// Re-verifying an already-paid order succeeds without touching the
	// gateway, sending mail, or moving paid_at.
	again, err := fx.svc.Verify(context.Background(), ref)
	require.NoError(t, err)
	require.False(t, again.Applied)
	require.Equal(t, 1, fx.gateway.verifyCalls)
	require.Len(t, fx.mailer.sent, 1)
	require.Equal(t, firstPaidAt, *fx.order.PaidAt)
}

func TestVerifyRejectedCharge(t *testing.T) {
	fx := newPaymentsFixture(t)
	ref := "ref-1"
	fx.order.TransactionReference = &ref
	fx.gateway.verifyResult = &paystack.Transaction{
		Status:          "failed",
		Reference:       ref,
		GatewayResponse: "Declined",
	}

	_, err := fx.svc.Verify(context.Background(), ref)
	require.Equal(t, pkgerrors.CodeVerificationFailed, pkgerrors.As(err).Code())
	require.Equal(t, enums.PaymentStatusPending, fx.order.PaymentStatus)
}

func TestVerifyAmountMismatch(t *testing.T) {
	fx := newPaymentsFixture(t)
	ref := "ref-1"
	fx.order.TransactionReference = &ref
	txn := fx.settledTransaction(ref)
	txn.AmountKobo = 100
	fx.gateway.verifyResult = txn

	_, err := fx.svc.Verify(context.Background(), ref)
	require.Equal(t, pkgerrors.CodeVerificationFailed, pkgerrors.As(err).Code())
}

func TestVerifyFallsBackToOrderNumber(t *testing.T) {
	fx := newPaymentsFixture(t)
	fx.gateway.verifyResult = fx.settledTransaction(fx.order.OrderNumber)

	result, err := fx.svc.Verify(context.Background(), fx.order.OrderNumber)
	require.NoError(t, err)
	require.True(t, result.Applied)
}

func webhookPayload(t *testing.T, reference string, id int64) []byte {
	t.Helper()
	paidAt := time.Now().UTC()
	payload, err := json.Marshal(paystack.Event{
		Event: paystack.EventChargeSuccess,
		Data: paystack.EventData{
			ID:         id,
			Reference:  reference,
			Status:     paystack.StatusSuccess,
			AmountKobo: 500000,
			Currency:   "NGN",
			PaidAt:     &paidAt,
		},
	})
	require.NoError(t, err)
	return payload
}

func TestWebhookInvalidSignature(t *testing.T) {
	fx := newPaymentsFixture(t)
	payload := webhookPayload(t, "ref-1", 42)

	err := fx.svc.HandleWebhook(context.Background(), payload, "bad-signature")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	require.Equal(t, enums.PaymentStatusPending, fx.order.PaymentStatus)
}

func TestWebhookMarksPaidAndDedupes(t *testing.T) {
	fx := newPaymentsFixture(t)
	ref := "ref-1"
	fx.order.TransactionReference = &ref
	payload := webhookPayload(t, ref, 42)

	require.NoError(t, fx.svc.HandleWebhook(context.Background(), payload, "good-signature"))
	require.Equal(t, enums.PaymentStatusPaid, fx.order.PaymentStatus)
	require.Len(t, fx.mailer.sent, 1)

	// Duplicate delivery of the same event is a no-op.
	require.NoError(t, fx.svc.HandleWebhook(context.Background(), payload, "good-signature"))
	require.Len(t, fx.mailer.sent, 1)
}

func TestWebhookRedeliveryAfterTransientFailure(t *testing.T) {
	fx := newPaymentsFixture(t)
	ref := "ref-1"
	fx.order.TransactionReference = &ref
	fx.repo.markPaidFailures = 1
	payload := webhookPayload(t, ref, 42)

	// First delivery hits a DB blip; the gateway gets an error and will
	// redeliver.
	err := fx.svc.HandleWebhook(context.Background(), payload, "good-signature")
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	require.Equal(t, enums.PaymentStatusPending, fx.order.PaymentStatus)

	// The redelivery must be processed, not written off as a duplicate.
	require.NoError(t, fx.svc.HandleWebhook(context.Background(), payload, "good-signature"))
	require.Equal(t, enums.PaymentStatusPaid, fx.order.PaymentStatus)
	require.Len(t, fx.mailer.sent, 1)
}

func TestWebhookAmountMismatchLeavesOrderPending(t *testing.T) {
	fx := newPaymentsFixture(t)
	ref := "ref-1"
	fx.order.TransactionReference = &ref
	paidAt := time.Now().UTC()
	payload, err := json.Marshal(paystack.Event{
		Event: paystack.EventChargeSuccess,
		Data: paystack.EventData{
			ID:         42,
			Reference:  ref,
			Status:     paystack.StatusSuccess,
			AmountKobo: 100,
			Currency:   "NGN",
			PaidAt:     &paidAt,
		},
	})
	require.NoError(t, err)

	// Acknowledged so the gateway stops redelivering, but the short charge
	// never flips the order.
	require.NoError(t, fx.svc.HandleWebhook(context.Background(), payload, "good-signature"))
	require.Equal(t, enums.PaymentStatusPending, fx.order.PaymentStatus)
	require.Empty(t, fx.mailer.sent)
}

func TestWebhookAfterVerifySendsNoSecondEmail(t *testing.T) {
	fx := newPaymentsFixture(t)
	ref := "ref-1"
	fx.order.TransactionReference = &ref
	fx.gateway.verifyResult = fx.settledTransaction(ref)

	_, err := fx.svc.Verify(context.Background(), ref)
	require.NoError(t, err)

	err = fx.svc.HandleWebhook(context.Background(), webhookPayload(t, ref, 99), "good-signature")
	require.NoError(t, err)
	require.Len(t, fx.mailer.sent, 1)
	require.Equal(t, enums.PaymentStatusPaid, fx.order.PaymentStatus)
}

func TestWebhookUnknownReferenceAccepted(t *testing.T) {
	fx := newPaymentsFixture(t)
	err := fx.svc.HandleWebhook(context.Background(), webhookPayload(t, "no-such-ref", 7), "good-signature")
	require.NoError(t, err)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	fx := newPaymentsFixture(t)
	payload := []byte(`{"event":"transfer.success","data":{"id":1,"reference":"x"}}`)
	require.NoError(t, fx.svc.HandleWebhook(context.Background(), payload, "good-signature"))
}
