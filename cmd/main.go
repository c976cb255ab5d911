package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/motominder/motominder/internal/auth"
	"github.com/motominder/motominder/internal/db"
	"github.com/motominder/motominder/internal/handlers"
	"github.com/motominder/motominder/internal/middleware"
	"github.com/motominder/motominder/internal/notify"
	"github.com/motominder/motominder/internal/reminder"
	"github.com/motominder/motominder/internal/service"
)

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Info("Connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "motominder"
	}
	database := client.Database(dbName)

	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	documents := &db.MongoDocumentCollection{Collection: database.Collection("documents")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	authService, err := auth.NewService()
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	// Without a broker the app still serves compliance state; only the
	// push reminders are disabled.
	var notifier reminder.Notifier
	if mqttClient, err := notify.ConnectMQTT(); err != nil {
		log.WithError(err).Warn("MQTT unavailable, push reminders disabled")
		notifier = notify.Disabled{}
	} else {
		log.Info("Connected to MQTT broker")
		notifier = notify.NewMQTTNotifier(mqttClient)
	}

	scheduler := reminder.NewScheduler(notifier)
	complianceService := service.NewComplianceService(vehicles, documents, scheduler)

	authHandler := handlers.NewAuthHandler(authService, users)
	vehicleHandler := handlers.NewVehicleHandler(vehicles, documents, complianceService)
	complianceHandler := handlers.NewComplianceHandler(complianceService)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/vehicles", vehicleHandler.Collection)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.Item)
	mux.HandleFunc("/api/obligations", complianceHandler.Obligations)
	mux.HandleFunc("/health", healthHandler)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	handler := rateLimiter.Limit(authMiddleware.Authenticate(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("HTTP server listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
