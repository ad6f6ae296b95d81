package handlers

import (
	"testing"

	"catering-backend/internal/models"
	"catering-backend/internal/statemachine"
)

func TestGatewayOutcomeSkipsCancelledOrder(t *testing.T) {
	order := models.Order{
		OrderStatus:   models.OrderStatusCancelled,
		PaymentStatus: models.PaymentStatusPending,
		StockRestored: true,
	}

	outcome := statemachine.MapGatewayStatus(statemachine.GatewayStatusSettlement, "", order.PaymentStatus)
	if !outcome.Apply {
		t.Fatalf("expected settlement mapping to apply, got %+v", outcome)
	}
	if gatewayOutcomeApplies(order, outcome) {
		t.Fatal("expected settlement for a cancelled order to be skipped, not mark it paid")
	}

	outcome = statemachine.MapGatewayStatus(statemachine.GatewayStatusExpire, "", order.PaymentStatus)
	if gatewayOutcomeApplies(order, outcome) {
		t.Fatal("expected expire for a cancelled order to be skipped")
	}
}

func TestGatewayOutcomeAppliesToLiveOrder(t *testing.T) {
	order := models.Order{
		OrderStatus:   models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}

	outcome := statemachine.MapGatewayStatus(statemachine.GatewayStatusSettlement, "", order.PaymentStatus)
	if !gatewayOutcomeApplies(order, outcome) {
		t.Fatal("expected settlement for a live order to apply")
	}

	outcome = statemachine.MapGatewayStatus("refund", "", order.PaymentStatus)
	if gatewayOutcomeApplies(order, outcome) {
		t.Fatal("expected unmapped gateway status to be skipped")
	}
}
