package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catering-backend/internal/models"
)

// GetMenus lists the menus customers can order: available, dated, not
// deleted. An optional ?date= filter narrows to one delivery day.
func GetMenus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menus"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := bson.M{
			"isAvailable": true,
			"isDeleted":   bson.M{"$ne": true},
			"date":        bson.M{"$ne": nil},
		}

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

		cursor, err := db.Collection("menus").Find(
			ctx,
			filter,
			options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "name", Value: 1}}),
		)
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

		log.Printf("[%s] returning %d menus", route, len(menus))
		c.JSON(http.StatusOK, menus)
	}
}
