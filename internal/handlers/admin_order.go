package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"catering-backend/internal/models"
	"catering-backend/internal/notify"
	"catering-backend/internal/statemachine"
)

type updateOrderStatusRequest struct {
	OrderStatus string `json:"orderStatus" binding:"required"`
}

type markPaidRequest struct {
	Action string `json:"action" binding:"required"`
}

const actionMarkPaid = "markPaid"

/* =========================
   STATUS TRANSITIONS
========================= */

// UpdateOrderStatus advances an order's lifecycle. Completion is
// hard-gated on the order being paid; cancellation goes through the
// stock-restoring path. A completed transition notifies the customer over
// WhatsApp, best effort.
func UpdateOrderStatus(db *mongo.Database, notifier notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/status"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		target := models.OrderStatus(strings.TrimSpace(req.OrderStatus))
		if !statemachine.IsAdminTarget(target) {
			respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("invalid target status: %s", target))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.OrderStatus == models.OrderStatusCancelled {
			respondWithError(c, http.StatusConflict, route, "order is already cancelled")
			return
		}

		if err := statemachine.CanTransition(order.OrderStatus, target); err != nil {
			respondWithError(c, http.StatusConflict, route, err.Error())
			return
		}

		if target == models.OrderStatusCompleted {
			if err := statemachine.CanComplete(order.PaymentStatus); err != nil {
				respondWithError(c, http.StatusConflict, route, err.Error())
				return
			}
		}

		if target == models.OrderStatusCancelled {
			if err := runCancelOrder(ctx, db, order); err != nil {
				if errors.Is(err, errAlreadyCancelled) {
					respondWithError(c, http.StatusConflict, route, "order is already cancelled")
					return
				}
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		} else {
			filter, update := orderStatusChange(order, target)
			res, err := db.Collection("orders").UpdateOne(ctx, filter, update)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if res.MatchedCount == 0 {
				respondWithError(c, http.StatusConflict, route, "order was updated concurrently")
				return
			}
		}

		log.Printf("[%s] order %s: %s -> %s", route, order.ID.Hex(), order.OrderStatus, target)

		if target == models.OrderStatusCompleted {
			notifyOrderCompleted(db, notifier, order)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":     "order status updated",
			"orderStatus": target,
		})
	}
}

// orderStatusChange builds a conditional status update. The filter pins the
// status the transition was validated against, so a concurrent writer makes
// the update miss instead of being silently overwritten.
func orderStatusChange(order models.Order, target models.OrderStatus) (bson.M, bson.M) {
	return bson.M{"_id": order.ID, "orderStatus": order.OrderStatus},
		bson.M{"$set": bson.M{
			"orderStatus": target,
			"updatedAt":   time.Now(),
		}}
}

/* =========================
   PAYMENT ACTIONS
========================= */

// MarkOrderPaid settles a single order's payment regardless of method, as
// long as it is not already paid.
func MarkOrderPaid(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/payment"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req markPaidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Action != actionMarkPaid {
			respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("invalid action: %s", req.Action))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.PaymentStatus == models.PaymentStatusPaid {
			respondWithError(c, http.StatusConflict, route, "order is already paid")
			return
		}
		if order.PaymentMethod != models.PaymentMethodCash && order.PaymentMethod != models.PaymentMethodTransfer {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method on order")
			return
		}

		_, err = db.Collection("orders").UpdateOne(
			ctx,
			bson.M{"_id": order.ID, "paymentStatus": bson.M{"$ne": models.PaymentStatusPaid}},
			bson.M{"$set": bson.M{
				"paymentStatus": models.PaymentStatusPaid,
				"updatedAt":     time.Now(),
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] order %s marked paid", route, order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"message":       "order marked paid",
			"paymentStatus": models.PaymentStatusPaid,
		})
	}
}

type mixedPaymentMethodsError struct {
	GroupID string
}

func (e mixedPaymentMethodsError) Error() string {
	return "orders in group use different payment methods"
}

// groupMarkPaidPlan derives the bulk-payment action for a group: the
// uniform payment method's allowed-from status and how many orders it still
// applies to. Orders already paid are left untouched; an all-paid group is a
// no-op.
func groupMarkPaidPlan(groupID string, orders []models.Order) (models.PaymentStatus, int, error) {
	method := orders[0].PaymentMethod
	for _, order := range orders[1:] {
		if order.PaymentMethod != method {
			return "", 0, mixedPaymentMethodsError{GroupID: groupID}
		}
	}

	allowedFrom, err := statemachine.MarkPaidAllowedFrom(method)
	if err != nil {
		return "", 0, err
	}

	eligible := 0
	for _, order := range orders {
		if order.PaymentStatus == allowedFrom {
			eligible++
		}
	}
	return allowedFrom, eligible, nil
}

// MarkGroupPaid settles every eligible order in a group with one bulk
// conditional update, so concurrent duplicate requests cannot produce a
// half-updated group.
func MarkGroupPaid(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/group/:groupId/payment"
		defer handlePanic(c, route)

		groupID := strings.TrimSpace(c.Param("groupId"))
		if groupID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid groupId")
			return
		}

		var req markPaidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Action != actionMarkPaid {
			respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("invalid action: %s", req.Action))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orders, err := findGroupOrders(ctx, db, groupID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if len(orders) == 0 {
			respondWithError(c, http.StatusNotFound, route, "order group not found")
			return
		}

		allowedFrom, eligible, err := groupMarkPaidPlan(groupID, orders)
		if err != nil {
			var mixedErr mixedPaymentMethodsError
			if errors.As(err, &mixedErr) {
				respondWithError(c, http.StatusConflict, route, mixedErr.Error())
				return
			}
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if eligible == 0 {
			c.JSON(http.StatusOK, gin.H{
				"message": "no orders required a payment update",
				"updated": 0,
			})
			return
		}

		res, err := db.Collection("orders").UpdateMany(
			ctx,
			bson.M{"groupId": groupID, "paymentStatus": allowedFrom},
			bson.M{"$set": bson.M{
				"paymentStatus": models.PaymentStatusPaid,
				"updatedAt":     time.Now(),
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] group %s: %d order(s) marked paid", route, groupID, res.ModifiedCount)
		c.JSON(http.StatusOK, gin.H{
			"message": "group marked paid",
			"updated": res.ModifiedCount,
		})
	}
}

/* =========================
   CANCELLATION
========================= */

// CancelOrder cancels an order and restores its stock exactly once. A
// second cancellation attempt is rejected and leaves stock alone.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/cancel"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.OrderStatus == models.OrderStatusCancelled {
			respondWithError(c, http.StatusConflict, route, "order is already cancelled")
			return
		}
		if order.OrderStatus == models.OrderStatusCompleted {
			respondWithError(c, http.StatusConflict, route, "completed orders cannot be cancelled")
			return
		}

		if err := runCancelOrder(ctx, db, order); err != nil {
			if errors.Is(err, errAlreadyCancelled) {
				respondWithError(c, http.StatusConflict, route, "order is already cancelled")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] order %s cancelled, stock restored: %v", route, order.ID.Hex(), !order.StockRestored)
		c.JSON(http.StatusOK, gin.H{
			"message":     "order cancelled",
			"orderStatus": models.OrderStatusCancelled,
		})
	}
}

// runCancelOrder wraps the cancel path in its own session transaction.
func runCancelOrder(ctx context.Context, db *mongo.Database, order models.Order) error {
	session, err := db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, cancelOrderTx(sessCtx, db, order)
	})
	return err
}

/* =========================
   COMPLETION NOTIFICATION
========================= */

// completedOrderMessage builds the WhatsApp text for a finished order.
func completedOrderMessage(customerName string, order models.Order) string {
	date := ""
	if deliveryDate, ok := order.DeliveryDate(); ok {
		date = models.DateKey(deliveryDate)
	}
	return fmt.Sprintf(
		"Halo %s, pesanan katering Anda (%s) untuk tanggal %s (%s) telah selesai. Terima kasih!",
		customerName, order.ID.Hex(), date, order.DeliveryTime,
	)
}

func notifyOrderCompleted(db *mongo.Database, notifier notify.Sender, order models.Order) {
	if notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&user); err != nil {
		log.Println("[NOTIFY] [ERROR] customer lookup failed:", err)
		return
	}
	if strings.TrimSpace(user.Phone) == "" {
		log.Println("[NOTIFY] [INFO] customer has no phone, skipping notification")
		return
	}

	notify.Dispatch(notifier, user.Phone, completedOrderMessage(user.Name, order))
}
