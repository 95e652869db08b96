package main

import (
	"fmt"
	"log"
	"os"

	"readearn-backend/config"
	"readearn-backend/controller"
	"readearn-backend/dao"
	"readearn-backend/logic"
	"readearn-backend/middleware"
	"readearn-backend/models"
	"readearn-backend/pkg"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Initialize config
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run main.go <config.yaml>")
	}
	configFile := os.Args[1]
	if err := config.LoadConfig(configFile); err != nil {
		log.Fatalf("Failed to load config from %s: %v", configFile, err)
	}

	logger := pkg.NewLogger(config.GlobalConfig.Server.Verbose)

	// Initialize database
	db, err := gorm.Open(postgres.Open(config.GlobalConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Article{},
		&models.User{},
		&models.ViewEvent{},
		&models.WithdrawalRequest{},
		&models.Settings{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize store and logics
	store := dao.NewStore(db)
	clock := clockwork.NewRealClock()

	settingsLogic := logic.NewSettingsLogic(store, config.GlobalConfig.Defaults, logger)
	viewLogic := logic.NewViewLogic(store, settingsLogic, clock, logger)
	withdrawalLogic := logic.NewWithdrawalLogic(store, settingsLogic, clock, logger)
	userLogic := logic.NewUserLogic(store, config.GlobalConfig.Auth.PromoteSecret, logger)

	// Initialize controllers
	viewCtrl := controller.NewViewController(viewLogic)
	articleCtrl := controller.NewArticleController(store)
	withdrawalCtrl := controller.NewWithdrawalController(withdrawalLogic)
	userCtrl := controller.NewUserController(userLogic)
	settingsCtrl := controller.NewSettingsController(settingsLogic)

	// Setup Gin router
	r := gin.Default()
	r.POST("/views", viewCtrl.RecordView)
	r.GET("/articles", articleCtrl.List)
	r.GET("/articles/:id", articleCtrl.Get)
	r.POST("/admin/promote", userCtrl.Promote)
	r.GET("/user", middleware.Auth, userCtrl.GetUser)
	r.POST("/withdrawals", middleware.Auth, withdrawalCtrl.Request)
	r.GET("/withdrawals", middleware.Auth, withdrawalCtrl.List)
	r.POST("/withdrawals/settle", middleware.Auth, withdrawalCtrl.Settle)
	r.PUT("/admin/settings", middleware.Auth, settingsCtrl.Update)

	// Run server
	logger.Info("starting server", "port", config.GlobalConfig.Server.Port)
	if err := r.Run(fmt.Sprintf(":%d", config.GlobalConfig.Server.Port)); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
