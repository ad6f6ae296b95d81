package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catering-backend/internal/models"
	"catering-backend/internal/statemachine"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	MenuID       string `json:"menuId" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
	SpecialNotes string `json:"specialNotes"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	DeliveryType    string                   `json:"deliveryType" binding:"required"`
	DeliveryAddress string                   `json:"deliveryAddress"`
	DeliveryTime    string                   `json:"deliveryTime" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
}

/* =========================
   CREATE ORDER (split checkout)
========================= */

// CreateOrder turns one checkout request into one persisted order per
// distinct menu delivery date. Validation runs over the whole request before
// any stock is touched; reservations and inserts share one transaction so a
// failure leaves nothing behind.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		items, err := buildCheckoutItems(req.Items)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if err := validateCheckoutItems(items); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		deliveryAddress := strings.TrimSpace(req.DeliveryAddress)
		if err := validateDeliveryDetails(req.DeliveryType, deliveryAddress, req.DeliveryTime, req.PaymentMethod); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		paymentStatus, err := statemachine.InitialPaymentStatus(req.PaymentMethod)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var created []models.Order
		var groupID *string

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			groupID = nil

			menus, err := loadMenusForCheckout(sessCtx, db, items)
			if err != nil {
				return nil, err
			}

			holidays, err := loadHolidaysForMenus(sessCtx, db, menus)
			if err != nil {
				return nil, err
			}

			if err := validateMenusForCheckout(items, menus, holidays); err != nil {
				return nil, err
			}

			plans := buildSplitPlan(items, menus)

			if len(plans) > 1 {
				id := uuid.NewString()
				groupID = &id
			}

			// All validation has passed for the entire request; only now
			// is stock reserved. A failed reservation aborts the
			// transaction and rolls earlier reservations back.
			for _, item := range items {
				if err := reserveMenuStock(sessCtx, db, menus[item.MenuID], item.Quantity); err != nil {
					return nil, err
				}
			}

			now := time.Now()
			docs := make([]interface{}, 0, len(plans))
			created = created[:0]
			for _, plan := range plans {
				order := models.Order{
					UserID:          principal.UserID,
					GroupID:         groupID,
					Items:           plan.Items,
					OrderDates:      models.DateList{plan.Date},
					DeliveryType:    req.DeliveryType,
					DeliveryAddress: deliveryAddress,
					DeliveryTime:    req.DeliveryTime,
					PaymentMethod:   req.PaymentMethod,
					TotalPrice:      plan.TotalPrice,
					PaymentStatus:   paymentStatus,
					OrderStatus:     models.OrderStatusPending,
					CreatedAt:       now,
					UpdatedAt:       now,
				}
				docs = append(docs, order)
				created = append(created, order)
			}

			res, err := db.Collection("orders").InsertMany(sessCtx, docs)
			if err != nil {
				return nil, err
			}
			for i, inserted := range res.InsertedIDs {
				if id, ok := inserted.(primitive.ObjectID); ok && i < len(created) {
					created[i].ID = id
				}
			}
			return nil, nil
		})
		if err != nil {
			respondSplitError(c, route, err)
			return
		}

		log.Printf("[%s] created %d order(s) for user %s", route, len(created), principal.UserID.Hex())

		if len(created) == 1 {
			c.JSON(http.StatusCreated, gin.H{"order": created[0]})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"orders":  created,
			"groupId": groupID,
		})
	}
}

func buildCheckoutItems(reqItems []createOrderItemRequest) ([]checkoutItem, error) {
	items := make([]checkoutItem, 0, len(reqItems))
	for _, item := range reqItems {
		menuID, err := primitive.ObjectIDFromHex(item.MenuID)
		if err != nil {
			return nil, errors.New("invalid menuId")
		}
		items = append(items, checkoutItem{
			MenuID:       menuID,
			Quantity:     item.Quantity,
			SpecialNotes: strings.TrimSpace(item.SpecialNotes),
		})
	}
	return items, nil
}

func loadMenusForCheckout(ctx context.Context, db *mongo.Database, items []checkoutItem) (map[primitive.ObjectID]models.Menu, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MenuID)
	}

	cursor, err := db.Collection("menus").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var menus []models.Menu
	if err := cursor.All(ctx, &menus); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Menu, len(menus))
	for _, menu := range menus {
		byID[menu.ID] = menu
	}
	return byID, nil
}

func loadHolidaysForMenus(ctx context.Context, db *mongo.Database, menus map[primitive.ObjectID]models.Menu) (map[string]models.Holiday, error) {
	var min, max time.Time
	found := false
	for _, menu := range menus {
		if menu.Date == nil {
			continue
		}
		if !found || menu.Date.Before(min) {
			min = *menu.Date
		}
		if !found || menu.Date.After(max) {
			max = *menu.Date
		}
		found = true
	}
	if !found {
		return map[string]models.Holiday{}, nil
	}

	cursor, err := db.Collection("holidays").Find(ctx, bson.M{
		"date": bson.M{
			"$gte": min.AddDate(0, 0, -1),
			"$lte": max.AddDate(0, 0, 1),
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var holidays []models.Holiday
	if err := cursor.All(ctx, &holidays); err != nil {
		return nil, err
	}

	byKey := make(map[string]models.Holiday, len(holidays))
	for _, holiday := range holidays {
		byKey[models.DateKey(holiday.Date)] = holiday
	}
	return byKey, nil
}

func respondSplitError(c *gin.Context, route string, err error) {
	var notFoundErr menuNotFoundError
	if errors.As(err, &notFoundErr) {
		log.Printf("[%s] menu not found: %s", route, notFoundErr.MenuID.Hex())
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "menu not found",
			"menuId": notFoundErr.MenuID.Hex(),
		})
		return
	}

	var stockErr insufficientStockError
	if errors.As(err, &stockErr) {
		payload := gin.H{
			"error":     stockErr.Error(),
			"menuId":    stockErr.MenuID.Hex(),
			"requested": stockErr.Requested,
		}
		if stockErr.Available != nil {
			payload["available"] = *stockErr.Available
		}
		c.JSON(http.StatusBadRequest, payload)
		return
	}

	var unavailableErr menuUnavailableError
	var undatedErr menuUndatedError
	var holidayErr holidayClosedError
	if errors.As(err, &unavailableErr) || errors.As(err, &undatedErr) || errors.As(err, &holidayErr) {
		respondWithError(c, http.StatusBadRequest, route, err.Error())
		return
	}

	log.Printf("[%s] order creation failed: %v", route, err)
	respondWithError(c, http.StatusInternalServerError, route, "db error")
}

/* =========================
   READ ACCESS
========================= */

// GetOrders lists the caller's orders; admins see everyone's, paginated.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := bson.M{}
		if !principal.IsAdmin() {
			filter["userId"] = principal.UserID
		}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["orderStatus"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"page":   page,
			"limit":  limit,
			"total":  total,
		})
	}
}

// GetOrder returns one order to its owner or to an admin.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
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

		if !principal.IsAdmin() && order.UserID != principal.UserID {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// GetOrderGroup returns the sibling orders of one multi-date checkout plus
// the derived group views: combined total and per-order payment statuses.
// The group itself is never stored; it is always computed from the orders.
func GetOrderGroup(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/group/:groupId"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		groupID := strings.TrimSpace(c.Param("groupId"))
		if groupID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid groupId")
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

		if !principal.IsAdmin() && orders[0].UserID != principal.UserID {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		total := 0.0
		paymentStatuses := make([]models.PaymentStatus, 0, len(orders))
		for _, order := range orders {
			total += order.TotalPrice
			paymentStatuses = append(paymentStatuses, order.PaymentStatus)
		}

		c.JSON(http.StatusOK, gin.H{
			"groupId":         groupID,
			"orders":          orders,
			"totalPrice":      total,
			"paymentStatuses": paymentStatuses,
		})
	}
}

func findGroupOrders(ctx context.Context, db *mongo.Database, groupID string) ([]models.Order, error) {
	cursor, err := db.Collection("orders").Find(
		ctx,
		bson.M{"groupId": groupID},
		options.Find().SetSort(bson.D{{Key: "orderDates", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
