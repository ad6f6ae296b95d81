package statemachine

import "catering-backend/internal/models"

// Gateway transaction statuses as reported by the Midtrans webhook.
const (
	GatewayStatusCapture    = "capture"
	GatewayStatusSettlement = "settlement"
	GatewayStatusPending    = "pending"
	GatewayStatusDeny       = "deny"
	GatewayStatusCancel     = "cancel"
	GatewayStatusExpire     = "expire"
	GatewayStatusFailure    = "failure"
)

const fraudStatusAccept = "accept"

// GatewayOutcome is the internal state a webhook callback maps to.
type GatewayOutcome struct {
	PaymentStatus models.PaymentStatus
	OrderStatus   models.OrderStatus
	// SetOrderStatus is false for intermediate callbacks that only touch
	// the payment state.
	SetOrderStatus bool
	// Cancel marks outcomes that must also run the stock-restoring
	// cancellation path.
	Cancel bool
	// Apply is false when the callback must be ignored, either because the
	// gateway status is unknown or because the order has already settled
	// and a late downgrade may not revert it.
	Apply bool
}

// MapGatewayStatus translates a gateway callback into internal state.
// A deny/cancel/expire/failure arriving after the order is already paid is
// ignored rather than reverting the settled payment.
func MapGatewayStatus(transactionStatus, fraudStatus string, current models.PaymentStatus) GatewayOutcome {
	switch transactionStatus {
	case GatewayStatusCapture:
		if fraudStatus != fraudStatusAccept {
			return GatewayOutcome{}
		}
		fallthrough
	case GatewayStatusSettlement:
		return GatewayOutcome{
			PaymentStatus:  models.PaymentStatusPaid,
			OrderStatus:    models.OrderStatusProcessing,
			SetOrderStatus: true,
			Apply:          true,
		}
	case GatewayStatusPending:
		if current == models.PaymentStatusPaid {
			return GatewayOutcome{}
		}
		return GatewayOutcome{
			PaymentStatus: models.PaymentStatusPending,
			Apply:         true,
		}
	case GatewayStatusDeny, GatewayStatusCancel, GatewayStatusExpire, GatewayStatusFailure:
		if current == models.PaymentStatusPaid {
			return GatewayOutcome{}
		}
		return GatewayOutcome{
			PaymentStatus:  models.PaymentStatusUnpaid,
			OrderStatus:    models.OrderStatusCancelled,
			SetOrderStatus: true,
			Cancel:         true,
			Apply:          true,
		}
	default:
		return GatewayOutcome{}
	}
}
