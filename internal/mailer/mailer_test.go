package mailer

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/adebayoakin/gearmart-backend/pkg/config"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/enums"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
)

func testOrder() *models.Order {
	return &models.Order{
		OrderNumber: "GM-20260828-ABC123",
		Email:       "ada@example.com",
		FirstName:   "Ada",
		LastName:    "Obi",
		Currency:    enums.CurrencyNGN,
		Total:       decimal.NewFromInt(5000),
		Items: []models.OrderItem{
			{ProductName: "Camping Stove", Quantity: 2, UnitPrice: decimal.NewFromInt(2500), LineTotal: decimal.NewFromInt(5000)},
		},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "orders@gearmart.example.com",
	}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	var sentTo []string
	var sentBody string
	m.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		require.Equal(t, "smtp.example.com:587", addr)
		require.Equal(t, "orders@gearmart.example.com", from)
		sentTo = to
		sentBody = string(msg)
		return nil
	}

	require.NoError(t, m.SendOrderConfirmation(context.Background(), testOrder()))
	require.Equal(t, []string{"ada@example.com"}, sentTo)
	require.Contains(t, sentBody, "GM-20260828-ABC123")
	require.Contains(t, sentBody, "Camping Stove")
	require.Contains(t, sentBody, "NGN 5000")
}

func TestSendOrderConfirmationDisabled(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	called := false
	m.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}

	require.NoError(t, m.SendOrderConfirmation(context.Background(), testOrder()))
	require.False(t, called)
}
