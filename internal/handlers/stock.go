package handlers

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"catering-backend/internal/models"
)

var errAlreadyCancelled = errors.New("order is already cancelled")

// reserveMenuStock decrements a limited menu's stock with a conditional
// update: the filter only matches while enough stock remains, so two
// concurrent checkouts can never drive the counter negative. Menus with nil
// stock are unlimited and are not touched.
func reserveMenuStock(ctx context.Context, db *mongo.Database, menu models.Menu, quantity int) error {
	if menu.Stock == nil {
		return nil
	}

	filter := bson.M{
		"_id":       menu.ID,
		"isDeleted": bson.M{"$ne": true},
		"stock":     bson.M{"$gte": quantity},
	}
	update := bson.M{"$inc": bson.M{"stock": -quantity}}

	res, err := db.Collection("menus").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// The stock read before this update may be stale by the time the
		// conditional misses, so report the shortage without a count.
		return insufficientStockError{
			MenuID:    menu.ID,
			Name:      menu.Name,
			Requested: quantity,
		}
	}
	return nil
}

// restoreOrderStock increments each limited menu's stock by the ordered
// quantity. Callers must guard with the order's stockRestored flag so the
// restore happens exactly once.
func restoreOrderStock(ctx context.Context, db *mongo.Database, order models.Order) error {
	for _, item := range order.Items {
		filter := bson.M{
			"_id":   item.MenuID,
			"stock": bson.M{"$type": "number"},
		}
		update := bson.M{"$inc": bson.M{"stock": item.Quantity}}

		if _, err := db.Collection("menus").UpdateOne(ctx, filter, update); err != nil {
			return err
		}
	}
	return nil
}

// cancelPlan decides the effect of cancelling an order: a cancelled order is
// rejected outright, and stock is restored only when no earlier cancellation
// already restored it.
func cancelPlan(order models.Order) (restoreStock bool, err error) {
	if order.OrderStatus == models.OrderStatusCancelled {
		return false, errAlreadyCancelled
	}
	return !order.StockRestored, nil
}

// cancelOrderTx marks the order cancelled and restores stock exactly once.
// It runs inside a session transaction so a failed restore rolls the status
// change back as well.
func cancelOrderTx(sessCtx mongo.SessionContext, db *mongo.Database, order models.Order) error {
	restore, err := cancelPlan(order)
	if err != nil {
		return err
	}

	set := bson.M{
		"orderStatus": models.OrderStatusCancelled,
		"updatedAt":   time.Now(),
	}

	if restore {
		if err := restoreOrderStock(sessCtx, db, order); err != nil {
			return err
		}
		set["stockRestored"] = true
	}

	_, err = db.Collection("orders").UpdateOne(
		sessCtx,
		bson.M{"_id": order.ID},
		bson.M{"$set": set},
	)
	return err
}
