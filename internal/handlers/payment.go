package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"catering-backend/internal/gateway"
	"catering-backend/internal/models"
	"catering-backend/internal/statemachine"
)

const gatewayOrderPrefix = "CTR-"

type createTransactionRequest struct {
	OrderID string `json:"orderId"`
	GroupID string `json:"groupId"`
}

/* =========================
   CREATE GATEWAY TRANSACTION
========================= */

// CreatePaymentTransaction registers a Snap transaction for one transfer
// order or a whole order group and records the gateway handle. A gateway
// failure aborts the whole operation; no payment record exists without a
// token.
func CreatePaymentTransaction(db *mongo.Database, gw *gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/create-transaction"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req createTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID := strings.TrimSpace(req.OrderID)
		groupID := strings.TrimSpace(req.GroupID)
		if (orderID == "") == (groupID == "") {
			respondWithError(c, http.StatusBadRequest, route, "exactly one of orderId or groupId is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
		defer cancel()

		var orders []models.Order
		var paymentGroupID *string
		if orderID != "" {
			id, err := primitive.ObjectIDFromHex(orderID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
				return
			}
			var order models.Order
			if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
				if err == mongo.ErrNoDocuments {
					respondWithError(c, http.StatusNotFound, route, "order not found")
					return
				}
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			orders = []models.Order{order}
		} else {
			found, err := findGroupOrders(ctx, db, groupID)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if len(found) == 0 {
				respondWithError(c, http.StatusNotFound, route, "order group not found")
				return
			}
			orders = found
			paymentGroupID = &groupID
		}

		if !principal.IsAdmin() && orders[0].UserID != principal.UserID {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		for _, order := range orders {
			if order.PaymentMethod != models.PaymentMethodTransfer {
				respondWithError(c, http.StatusBadRequest, route, "gateway payment is only available for transfer orders")
				return
			}
			if order.PaymentStatus == models.PaymentStatusPaid {
				respondWithError(c, http.StatusConflict, route, "order is already paid")
				return
			}
			if order.OrderStatus == models.OrderStatusCancelled {
				respondWithError(c, http.StatusConflict, route, "order is cancelled")
				return
			}
		}

		gross := 0.0
		items := make([]gateway.TransactionItem, 0)
		orderIDs := make([]primitive.ObjectID, 0, len(orders))
		for _, order := range orders {
			gross += order.TotalPrice
			orderIDs = append(orderIDs, order.ID)
			for _, item := range order.Items {
				items = append(items, gateway.TransactionItem{
					ID:       item.MenuID.Hex(),
					Name:     item.Name,
					Price:    int64(math.Round(item.Price)),
					Quantity: item.Quantity,
				})
			}
		}

		customer := gateway.CustomerDetails{}
		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": orders[0].UserID}).Decode(&user); err == nil {
			customer = gateway.CustomerDetails{
				FirstName: user.Name,
				Email:     user.Email,
				Phone:     user.Phone,
			}
		}

		gatewayOrderID := gatewayOrderPrefix + uuid.NewString()

		tx, err := gw.CreateTransaction(ctx, gatewayOrderID, int64(math.Round(gross)), items, customer)
		if err != nil {
			log.Printf("[%s] gateway error: %v", route, err)
			respondWithError(c, http.StatusBadGateway, route, "payment gateway error")
			return
		}

		now := time.Now()
		payment := models.Payment{
			GatewayOrderID:    gatewayOrderID,
			OrderIDs:          orderIDs,
			GroupID:           paymentGroupID,
			GrossAmount:       gross,
			Token:             tx.Token,
			RedirectURL:       tx.RedirectURL,
			TransactionStatus: statemachine.GatewayStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err := db.Collection("payments").InsertOne(ctx, payment); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] transaction %s created for %d order(s)", route, gatewayOrderID, len(orders))
		c.JSON(http.StatusCreated, gin.H{
			"gatewayOrderId": gatewayOrderID,
			"token":          tx.Token,
			"redirectUrl":    tx.RedirectURL,
			"grossAmount":    gross,
		})
	}
}

/* =========================
   GATEWAY WEBHOOK
========================= */

type gatewayNotification struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
}

// PaymentNotification receives the asynchronous gateway callback, verifies
// its signature and maps the transaction status onto every linked order.
// Invalid signatures abort before any state is touched.
func PaymentNotification(db *mongo.Database, gw *gateway.Client, enforceSignature bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/notification"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var notification gatewayNotification
		if err := c.ShouldBindJSON(&notification); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid notification body")
			return
		}
		if strings.TrimSpace(notification.OrderID) == "" {
			respondWithError(c, http.StatusBadRequest, route, "order_id is required")
			return
		}

		if enforceSignature {
			if !gw.VerifySignature(notification.OrderID, notification.StatusCode, notification.GrossAmount, notification.SignatureKey) {
				log.Printf("[%s] invalid signature for %s", route, notification.OrderID)
				respondWithError(c, http.StatusUnauthorized, route, "invalid signature")
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		var payment models.Payment
		if err := db.Collection("payments").FindOne(ctx, bson.M{"gatewayOrderId": notification.OrderID}).Decode(&payment); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "transaction not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		updated := 0
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			updated = 0
			for _, id := range payment.OrderIDs {
				var order models.Order
				if err := db.Collection("orders").FindOne(sessCtx, bson.M{"_id": id}).Decode(&order); err != nil {
					if err == mongo.ErrNoDocuments {
						log.Printf("[%s] linked order %s missing", route, id.Hex())
						continue
					}
					return nil, err
				}

				outcome := statemachine.MapGatewayStatus(notification.TransactionStatus, notification.FraudStatus, order.PaymentStatus)
				if !gatewayOutcomeApplies(order, outcome) {
					continue
				}

				if err := applyGatewayOutcome(sessCtx, db, order, outcome); err != nil {
					return nil, err
				}
				updated++
			}

			_, err := db.Collection("payments").UpdateOne(
				sessCtx,
				bson.M{"_id": payment.ID},
				bson.M{"$set": bson.M{
					"transactionStatus": notification.TransactionStatus,
					"updatedAt":         time.Now(),
				}},
			)
			return nil, err
		})
		if err != nil {
			log.Printf("[%s] webhook handling failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] %s: status %s applied to %d order(s)", route, notification.OrderID, notification.TransactionStatus, updated)
		c.JSON(http.StatusOK, gin.H{
			"message": "notification processed",
			"updated": updated,
		})
	}
}

// gatewayOutcomeApplies reports whether a mapped webhook outcome may touch
// this order. Cancelled orders are frozen: when an admin cancels between
// transaction creation and the callback, a late settlement must not mark
// the cancelled order paid.
func gatewayOutcomeApplies(order models.Order, outcome statemachine.GatewayOutcome) bool {
	if !outcome.Apply {
		return false
	}
	if order.OrderStatus == models.OrderStatusCancelled {
		return false
	}
	return true
}

// applyGatewayOutcome writes one mapped webhook outcome to one order. The
// cancel mapping reuses the stock-restoring cancellation path; the paid
// mapping advances pending orders to processing without resurrecting
// cancelled ones.
func applyGatewayOutcome(sessCtx mongo.SessionContext, db *mongo.Database, order models.Order, outcome statemachine.GatewayOutcome) error {
	if outcome.Cancel {
		if order.OrderStatus == models.OrderStatusCancelled {
			return nil
		}
		if err := cancelOrderTx(sessCtx, db, order); err != nil {
			return err
		}
		_, err := db.Collection("orders").UpdateOne(
			sessCtx,
			bson.M{"_id": order.ID},
			bson.M{"$set": bson.M{"paymentStatus": outcome.PaymentStatus}},
		)
		return err
	}

	set := bson.M{
		"paymentStatus": outcome.PaymentStatus,
		"updatedAt":     time.Now(),
	}
	if outcome.SetOrderStatus && statemachine.CanTransition(order.OrderStatus, outcome.OrderStatus) == nil {
		set["orderStatus"] = outcome.OrderStatus
	}

	_, err := db.Collection("orders").UpdateOne(
		sessCtx,
		bson.M{"_id": order.ID},
		bson.M{"$set": set},
	)
	return err
}

/* =========================
   STATUS POLLING
========================= */

// GetPaymentStatus returns the reconciled state of one gateway transaction
// for client polling.
func GetPaymentStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payment/status/:orderId"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		gatewayOrderID := strings.TrimSpace(c.Param("orderId"))
		if gatewayOrderID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var payment models.Payment
		if err := db.Collection("payments").FindOne(ctx, bson.M{"gatewayOrderId": gatewayOrderID}).Decode(&payment); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "transaction not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"_id": bson.M{"$in": payment.OrderIDs}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		if len(orders) > 0 && !principal.IsAdmin() && orders[0].UserID != principal.UserID {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		orderStates := make([]gin.H, 0, len(orders))
		for _, order := range orders {
			orderStates = append(orderStates, gin.H{
				"id":            order.ID.Hex(),
				"paymentStatus": order.PaymentStatus,
				"orderStatus":   order.OrderStatus,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"gatewayOrderId":    payment.GatewayOrderID,
			"transactionStatus": payment.TransactionStatus,
			"grossAmount":       payment.GrossAmount,
			"orders":            orderStates,
		})
	}
}
