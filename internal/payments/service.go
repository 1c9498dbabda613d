package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/internal/orders"
	"github.com/adebayoakin/gearmart-backend/pkg/auth"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/enums"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
	"github.com/adebayoakin/gearmart-backend/pkg/metrics"
	"github.com/adebayoakin/gearmart-backend/pkg/paystack"
)

const webhookDedupTTL = 24 * time.Hour

// Gateway is the slice of the Paystack client the payment flow uses.
type Gateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
	ValidateSignature(payload []byte, signature string) bool
	CallbackURL() string
}

// Mailer sends the order confirmation. Failures are logged, never surfaced.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

// IdempotencyStore guards against duplicate webhook deliveries.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// InitResult carries the redirect data for the hosted payment page.
type InitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult reports the order state after reconciliation. Applied is true
// only when this call performed the pending→paid transition.
type VerifyResult struct {
	Order   orders.OrderView `json:"order"`
	Applied bool             `json:"-"`
}

// Service owns payment initialization and the two reconciliation paths
// (browser callback verify and server webhook). Both funnel into the same
// conditional transition, so the order is marked paid at most once no matter
// how the confirmations race.
type Service interface {
	Initialize(ctx context.Context, orderNumber string, actor *auth.AccessTokenPayload) (*InitResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	orders      orders.Repository
	gateway     Gateway
	idempotency IdempotencyStore
	mailer      Mailer
	metrics     *metrics.PaymentMetrics
	logg        *logger.Logger
}

// NewService wires the payment flow. The mailer and metrics are optional.
func NewService(
	ordersRepo orders.Repository,
	gateway Gateway,
	idempotency IdempotencyStore,
	mailer Mailer,
	paymentMetrics *metrics.PaymentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:      ordersRepo,
		gateway:     gateway,
		idempotency: idempotency,
		mailer:      mailer,
		metrics:     paymentMetrics,
		logg:        logg,
	}, nil
}

// Initialize opens a Paystack transaction for a pending order and returns the
// authorization URL. The gateway reference is persisted only after the
// gateway accepts the init; a gateway failure leaves the order untouched.
func (s *service) Initialize(ctx context.Context, orderNumber string, actor *auth.AccessTokenPayload) (*InitResult, error) {
	order, err := s.loadByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if err := orders.AuthorizeRead(order, actor); err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.PaymentStatus.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order payment is %s", order.PaymentStatus))
	}

	reference := newReference(order)
	result, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		AmountKobo: koboAmount(order.Total),
		Email:      order.Email,
		Reference:  reference,
		Currency:   order.Currency.String(),
		Metadata: map[string]any{
			"order_number": order.OrderNumber,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetTransactionReference(ctx, order.ID, result.Reference); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist transaction reference")
	}

	return &InitResult{
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Reference:        result.Reference,
	}, nil
}

// Verify reconciles an order against the gateway after the browser callback.
// An already-paid order short-circuits to success without touching the
// gateway, so refreshing the callback page stays harmless.
func (s *service) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	order, err := s.loadByReferenceOrNumber(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		view := orders.ToOrderView(order)
		return &VerifyResult{Order: view, Applied: false}, nil
	}

	gatewayRef := reference
	if order.TransactionReference != nil {
		gatewayRef = *order.TransactionReference
	}
	txn, err := s.gateway.VerifyTransaction(ctx, gatewayRef)
	if err != nil {
		return nil, err
	}
	if !txn.Succeeded() {
		return nil, pkgerrors.New(pkgerrors.CodeVerificationFailed,
			"payment was not successful").
			WithDetails(map[string]any{
				"status":           txn.Status,
				"gateway_response": txn.GatewayResponse,
			})
	}
	if txn.AmountKobo != koboAmount(order.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeVerificationFailed,
			"paid amount does not match the order total").
			WithDetails(map[string]any{
				"expected_kobo": koboAmount(order.Total),
				"received_kobo": txn.AmountKobo,
			})
	}

	applied, err := s.markPaid(ctx, order, txn.PaidAt, "verify")
	if err != nil {
		return nil, err
	}

	refreshed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	view := orders.ToOrderView(refreshed)
	return &VerifyResult{Order: view, Applied: applied}, nil
}

// HandleWebhook processes a raw gateway delivery. The controller converts the
// returned error into a bare status code; no body is ever written back.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.gateway.ValidateSignature(payload, signature) {
		s.metrics.ObserveWebhook("rejected_signature")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}

	var event paystack.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		s.metrics.ObserveWebhook("malformed")
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}

	if event.Event != paystack.EventChargeSuccess {
		s.metrics.ObserveWebhook("ignored")
		return nil
	}

	order, err := s.loadByReferenceOrNumber(ctx, event.Data.Reference)
	if err != nil {
		if pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
			// Unknown reference: acknowledge so the gateway stops retrying,
			// keep a trace for reconciliation.
			s.logg.Warn(s.logg.WithField(ctx, "reference", event.Data.Reference),
				"webhook for unknown transaction reference")
			s.metrics.ObserveWebhook("unknown_order")
			return nil
		}
		s.metrics.ObserveWebhook("failed")
		return err
	}

	if event.Data.Status != paystack.StatusSuccess {
		s.metrics.ObserveWebhook("ignored")
		return nil
	}

	if event.Data.AmountKobo != koboAmount(order.Total) {
		// Signed, so not forgery: a partial or over-charge on the gateway
		// side. Acknowledge to stop redeliveries and leave the order for
		// manual reconciliation.
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_number":  order.OrderNumber,
			"expected_kobo": koboAmount(order.Total),
			"received_kobo": event.Data.AmountKobo,
		}), "webhook amount does not match the order total")
		s.metrics.ObserveWebhook("amount_mismatch")
		return nil
	}

	if _, err := s.markPaid(ctx, order, event.Data.PaidAt, "webhook"); err != nil {
		s.metrics.ObserveWebhook("failed")
		return err
	}

	// The dedup key is claimed only after the transition lands. A redelivery
	// after a failed attempt must be retried, not written off as a duplicate;
	// TryMarkPaid keeps concurrent deliveries single-shot in the meantime.
	fresh, err := s.idempotency.SetNX(ctx,
		s.idempotency.IdempotencyKey("paystack", event.DedupID()), "1", webhookDedupTTL)
	if err != nil {
		// The order is already paid, so failing now would only trigger a
		// harmless redelivery.
		s.logg.Error(ctx, "claiming webhook dedup key", err)
	}
	if err == nil && !fresh {
		s.metrics.ObserveWebhook("duplicate")
		return nil
	}
	s.metrics.ObserveWebhook("accepted")
	return nil
}

// markPaid runs the conditional transition and, only for the winning caller,
// sends the confirmation email.
func (s *service) markPaid(ctx context.Context, order *models.Order, paidAt *time.Time, source string) (bool, error) {
	when := time.Now().UTC()
	if paidAt != nil {
		when = paidAt.UTC()
	}

	applied, err := s.orders.TryMarkPaid(ctx, order.ID, when)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	if !applied {
		s.metrics.ObserveTransition(source, "noop")
		return false, nil
	}
	s.metrics.ObserveTransition(source, "applied")

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, "order marked paid")

	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(ctx, order); err != nil {
			s.logg.Error(ctx, "sending order confirmation email", err)
		}
	}
	return true, nil
}

func (s *service) loadByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// loadByReferenceOrNumber resolves the order a gateway callback refers to.
// References default to <order_number>-<suffix>, but a manually initialized
// transaction may carry the bare order number, so both lookups are tried.
func (s *service) loadByReferenceOrNumber(ctx context.Context, reference string) (*models.Order, error) {
	order, err := s.orders.FindByReference(ctx, reference)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	order, err = s.orders.FindByOrderNumber(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// newReference builds a fresh gateway reference. Re-initializing an unpaid
// order issues a new reference; the unique column keeps old ones from
// colliding.
func newReference(order *models.Order) string {
	return fmt.Sprintf("%s-%s", order.OrderNumber, uuid.New().String()[:8])
}

// koboAmount converts a major-unit decimal total to the gateway's integer
// subunits.
func koboAmount(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).IntPart()
}
