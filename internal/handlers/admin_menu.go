package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catering-backend/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type createMenuRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required"`
	Category    []string `json:"category"`
	Description string   `json:"description"`
	Stock       *int     `json:"stock"`
	Date        string   `json:"date" binding:"required"`
	IsAvailable *bool    `json:"isAvailable"`
}

type updateMenuRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	Category    *[]string `json:"category"`
	Description *string   `json:"description"`
	Stock       *int      `json:"stock"`
	Unlimited   *bool     `json:"unlimited"`
	Date        *string   `json:"date"`
	IsAvailable *bool     `json:"isAvailable"`
}

func parseMenuDate(value string) (time.Time, error) {
	parsed, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date, expected %s", models.DateLayout)
	}
	return parsed, nil
}

func normalizeCategories(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)

	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

/* =======================
   ADMIN MENU CRUD
======================= */

func GetAllMenus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/menus"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := bson.M{"isDeleted": bson.M{"$ne": true}}
		if date := strings.TrimSpace(c.Query("date")); date != "" {
			parsed, err := parseMenuDate(date)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			filter["date"] = bson.M{
				"$gte": parsed,
				"$lt":  parsed.AddDate(0, 0, 1),
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "date", Value: 1}, {Key: "name", Value: 1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("menus").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		menus := make([]models.Menu, 0)
		if err := cursor.All(ctx, &menus); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		total, err := db.Collection("menus").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"menus": menus,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

func CreateMenu(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/menus"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createMenuRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must be greater than zero")
			return
		}
		if req.Stock != nil && *req.Stock < 0 {
			respondWithError(c, http.StatusBadRequest, route, "stock must not be negative")
			return
		}

		date, err := parseMenuDate(req.Date)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		isAvailable := true
		if req.IsAvailable != nil {
			isAvailable = *req.IsAvailable
		}

		menu := models.Menu{
			Name:        strings.TrimSpace(req.Name),
			Price:       req.Price,
			Category:    normalizeCategories(req.Category),
			Description: strings.TrimSpace(req.Description),
			Stock:       req.Stock,
			Date:        &date,
			IsAvailable: isAvailable,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("menus").InsertOne(ctx, menu)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			menu.ID = id
		}

		log.Printf("[%s] menu created: %s (%s)", route, menu.Name, models.DateKey(date))
		c.JSON(http.StatusCreated, gin.H{"menu": menu})
	}
}

func UpdateMenu(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/menus/:id"
		defer handlePanic(c, route)

		menuID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateMenuRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name must not be empty")
				return
			}
			set["name"] = name
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "price must be greater than zero")
				return
			}
			set["price"] = *req.Price
		}
		if req.Category != nil {
			set["category"] = normalizeCategories(*req.Category)
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Unlimited != nil && *req.Unlimited {
			set["stock"] = nil
		} else if req.Stock != nil {
			if *req.Stock < 0 {
				respondWithError(c, http.StatusBadRequest, route, "stock must not be negative")
				return
			}
			set["stock"] = *req.Stock
		}
		if req.Date != nil {
			date, err := parseMenuDate(*req.Date)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			set["date"] = date
		}
		if req.IsAvailable != nil {
			set["isAvailable"] = *req.IsAvailable
		}

		if len(set) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res := db.Collection("menus").FindOneAndUpdate(
			ctx,
			bson.M{"_id": menuID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)

		var menu models.Menu
		if err := res.Decode(&menu); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "menu not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] menu updated: %s", route, menu.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"menu": menu})
	}
}

// DeleteMenu soft-deletes so historical orders keep resolving their menu.
func DeleteMenu(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/menus/:id"
		defer handlePanic(c, route)

		menuID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("menus").UpdateOne(
			ctx,
			bson.M{"_id": menuID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{
				"isDeleted":   true,
				"isAvailable": false,
				"deletedAt":   now,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "menu not found")
			return
		}

		log.Printf("[%s] menu deleted: %s", route, menuID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "menu deleted"})
	}
}
