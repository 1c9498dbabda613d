package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/adebayoakin/gearmart-backend/api/middleware"
	"github.com/adebayoakin/gearmart-backend/internal/cart"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
)

type stubCartService struct {
	view *cart.View
	err  error

	lastSessionID string
	lastProductID uuid.UUID
	lastQuantity  int
}

func (s *stubCartService) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*cart.View, error) {
	s.lastSessionID, s.lastProductID, s.lastQuantity = sessionID, productID, quantity
	return s.view, s.err
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*cart.View, error) {
	s.lastSessionID, s.lastProductID, s.lastQuantity = sessionID, productID, quantity
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*cart.View, error) {
	s.lastSessionID, s.lastProductID = sessionID, productID
	return s.view, s.err
}

func (s *stubCartService) Clear(ctx context.Context, sessionID string) error {
	s.lastSessionID = sessionID
	return s.err
}

func (s *stubCartService) GetView(ctx context.Context, sessionID string) (*cart.View, error) {
	s.lastSessionID = sessionID
	return s.view, s.err
}

func (s *stubCartService) Snapshot(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return cart.NewCart(sessionID), nil
}

func cartTestRouter(svc cart.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test"})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithCartSession(req.Context(), "sess-test")))
		})
	})
	r.Get("/cart", CartFetch(svc, logg))
	r.Post("/cart/items", CartAddItem(svc, logg))
	r.Patch("/cart/items/{productId}", CartUpdateItem(svc, logg))
	r.Delete("/cart/items/{productId}", CartRemoveItem(svc, logg))
	return r
}

func emptyView() *cart.View {
	return &cart.View{
		SessionID: "sess-test",
		Items:     []cart.ItemView{},
		Subtotal:  decimal.Zero,
		Total:     decimal.Zero,
	}
}

func TestCartAddItem(t *testing.T) {
	svc := &stubCartService{view: emptyView()}
	router := cartTestRouter(svc)

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "sess-test", svc.lastSessionID)
	require.Equal(t, productID, svc.lastProductID)
	require.Equal(t, 2, svc.lastQuantity)
}

func TestCartAddItemRejectsMalformedBody(t *testing.T) {
	svc := &stubCartService{view: emptyView()}
	router := cartTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"quantity":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestCartUpdateInsufficientStock(t *testing.T) {
	svc := &stubCartService{
		err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for Camping Stove").
			WithDetails(map[string]any{"requested": 6, "available": 5}),
	}
	router := cartTestRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/cart/items/"+uuid.NewString(), strings.NewReader(`{"quantity":6}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "INSUFFICIENT_STOCK", envelope.Error.Code)
	require.Contains(t, envelope.Error.Message, "Camping Stove")
	require.EqualValues(t, 5, envelope.Error.Details["available"])
}

func TestCartRemoveInvalidProductID(t *testing.T) {
	svc := &stubCartService{view: emptyView()}
	router := cartTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
