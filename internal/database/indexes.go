package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMenuIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("menus").Indexes()

	dateIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}},
		Options: options.Index().
			SetName("date_index").
			SetPartialFilterExpression(bson.M{
				"date": bson.M{
					"$exists": true,
				},
			}),
	}

	log.Println("EnsureMenuIndexes: creating date_index")
	_, err := indexes.CreateOne(ctx, dateIndex)
	if err != nil {
		log.Println("EnsureMenuIndexes: date index error:", err)
		return err
	}
	log.Println("EnsureMenuIndexes: date_index created")
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys: bson.D{{Key: "groupId", Value: 1}},
			Options: options.Index().
				SetName("groupId_index").
				SetPartialFilterExpression(bson.M{
					"groupId": bson.M{
						"$exists": true,
					},
				}),
		},
	}

	log.Println("EnsureOrderIndexes: creating userId_index and groupId_index")
	_, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: order indexes created")
	return nil
}

func EnsurePaymentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("payments").Indexes()

	gatewayOrderIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "gatewayOrderId", Value: 1}},
		Options: options.Index().
			SetName("gatewayOrderId_unique").
			SetUnique(true),
	}

	log.Println("EnsurePaymentIndexes: creating gatewayOrderId_unique index")
	_, err := indexes.CreateOne(ctx, gatewayOrderIndex)
	if err != nil {
		log.Println("EnsurePaymentIndexes: gatewayOrderId index error:", err)
		return err
	}
	log.Println("EnsurePaymentIndexes: gatewayOrderId_unique index created")
	return nil
}

func EnsureHolidayIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("holidays").Indexes()

	dateIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}},
		Options: options.Index().
			SetName("date_unique").
			SetUnique(true),
	}

	log.Println("EnsureHolidayIndexes: creating date_unique index")
	_, err := indexes.CreateOne(ctx, dateIndex)
	if err != nil {
		log.Println("EnsureHolidayIndexes: date index error:", err)
		return err
	}
	log.Println("EnsureHolidayIndexes: date_unique index created")
	return nil
}
