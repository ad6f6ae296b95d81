package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"catering-backend/internal/config"
	"catering-backend/internal/database"
	"catering-backend/internal/gateway"
	"catering-backend/internal/handlers"
	"catering-backend/internal/middleware"
	"catering-backend/internal/notify"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureMenuIndexes(db); err != nil {
		log.Printf("menu index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsurePaymentIndexes(db); err != nil {
		log.Printf("payment index warning: %v", err)
	}
	if err := database.EnsureHolidayIndexes(db); err != nil {
		log.Printf("holiday index warning: %v", err)
	}

	midtrans := gateway.NewClient(config.AppEnv.MidtransBaseURL, config.AppEnv.MidtransServerKey)
	whatsapp := notify.NewFonnteClient(config.AppEnv.FonnteBaseURL, config.AppEnv.FonnteToken)

	jwtSecret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL

	r := gin.Default()

	r.POST("/auth/register", handlers.Register(db, jwtSecret, accessTTL))
	r.POST("/auth/login", handlers.Login(db, jwtSecret, accessTTL))
	r.GET("/auth/me", middleware.UserAuth(jwtSecret), handlers.GetMe(db))

	r.POST("/admin/login", handlers.AdminLogin(db, jwtSecret, accessTTL))

	r.GET("/menus", handlers.GetMenus(db))
	r.GET("/holidays", handlers.GetHolidays(db))

	orders := r.Group("/orders")
	orders.Use(middleware.UserAuth(jwtSecret))
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("", handlers.GetOrders(db))
		orders.GET("/:id", handlers.GetOrder(db))
		orders.GET("/group/:groupId", handlers.GetOrderGroup(db))

		orders.PATCH("/:id/status", middleware.AdminAuth(jwtSecret), handlers.UpdateOrderStatus(db, whatsapp))
		orders.PATCH("/:id/payment", middleware.AdminAuth(jwtSecret), handlers.MarkOrderPaid(db))
		orders.PATCH("/group/:groupId/payment", middleware.AdminAuth(jwtSecret), handlers.MarkGroupPaid(db))
		orders.POST("/:id/cancel", middleware.AdminAuth(jwtSecret), handlers.CancelOrder(db))
	}

	payment := r.Group("/payment")
	{
		payment.POST("/create-transaction", middleware.UserAuth(jwtSecret), handlers.CreatePaymentTransaction(db, midtrans))
		payment.POST("/notification", handlers.PaymentNotification(db, midtrans, config.AppEnv.IsProduction()))
		payment.GET("/status/:orderId", middleware.UserAuth(jwtSecret), handlers.GetPaymentStatus(db))
	}

	user := r.Group("/user")
	user.Use(middleware.UserAuth(jwtSecret))
	{
		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(jwtSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/menus", handlers.GetAllMenus(db))
		admin.POST("/menus", handlers.CreateMenu(db))
		admin.PUT("/menus/:id", handlers.UpdateMenu(db))
		admin.DELETE("/menus/:id", handlers.DeleteMenu(db))

		admin.POST("/holidays", handlers.CreateHoliday(db))
		admin.PUT("/holidays/:id", handlers.UpdateHoliday(db))
		admin.DELETE("/holidays/:id", handlers.DeleteHoliday(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
