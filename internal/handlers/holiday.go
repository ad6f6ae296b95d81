package handlers

import (
	"context"
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

type holidayRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// GetHolidays lists upcoming closure days for the ordering UI.
func GetHolidays(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /holidays"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("holidays").Find(
			ctx,
			bson.M{},
			options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		holidays := make([]models.Holiday, 0)
		if err := cursor.All(ctx, &holidays); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, holidays)
	}
}

func CreateHoliday(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/holidays"
		defer handlePanic(c, route)

		var req holidayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		date, err := parseMenuDate(req.Date)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		holiday := models.Holiday{
			Date:      date,
			Name:      strings.TrimSpace(req.Name),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("holidays").InsertOne(ctx, holiday)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "holiday already exists for this date")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			holiday.ID = id
		}

		log.Printf("[%s] holiday created: %s (%s)", route, holiday.Name, models.DateKey(date))
		c.JSON(http.StatusCreated, gin.H{"holiday": holiday})
	}
}

func UpdateHoliday(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/holidays/:id"
		defer handlePanic(c, route)

		holidayID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req holidayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		date, err := parseMenuDate(req.Date)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("holidays").UpdateOne(
			ctx,
			bson.M{"_id": holidayID},
			bson.M{"$set": bson.M{
				"date": date,
				"name": strings.TrimSpace(req.Name),
			}},
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "holiday already exists for this date")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "holiday not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "holiday updated"})
	}
}

func DeleteHoliday(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/holidays/:id"
		defer handlePanic(c, route)

		holidayID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("holidays").DeleteOne(ctx, bson.M{"_id": holidayID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "holiday not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "holiday deleted"})
	}
}
