package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"workforce-project/projects-service/handlers"
	"workforce-project/projects-service/logging"
	"workforce-project/projects-service/middleware"
	"workforce-project/projects-service/repositories"
	"workforce-project/projects-service/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Role")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func createProjectNameIndex(collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"name": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on project name: %v", err)
	}
	return nil
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Projects Service...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "workforce_db"
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.TODO())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	projectsCollection := db.Collection("projects")
	employeesCollection := db.Collection("employees")

	if err := createProjectNameIndex(projectsCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	notificationRepo, err := repositories.NewNotificationRepo(logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_INIT_FAILED, Description: Failed to initialize notification repository: %v", err)
	}
	defer notificationRepo.CloseSession()
	notificationRepo.CreateTable()

	emailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "email-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	dispatcher := services.NewDispatcher(notificationRepo, services.SMTPMailer{}, emailBreaker)

	projectService := services.NewProjectService(projectsCollection, employeesCollection, dispatcher, uploadDir)
	taskService := services.NewTaskService(projectsCollection, employeesCollection, dispatcher, uploadDir)
	notificationService := services.NewNotificationService(notificationRepo)

	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService, uploadDir)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Projects service is running"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects", projectHandler.ListProjectsHandler).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.GetProjectByIDHandler).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProjectHandler).Methods("DELETE")
	api.HandleFunc("/projects/{id}/members", projectHandler.UpdateMembersHandler).Methods("PUT")

	api.HandleFunc("/projects/{id}/tasks", taskHandler.CreateTask).Methods("POST")
	api.HandleFunc("/projects/{id}/tasks/{taskId}", taskHandler.RedefineTask).Methods("PUT")
	// One progress-update implementation behind both verbs.
	api.HandleFunc("/projects/{id}/tasks/{taskId}/update", taskHandler.RecordTaskProgress).Methods("POST", "PUT")
	api.HandleFunc("/projects/{id}/tasks/{taskId}", taskHandler.DeleteTask).Methods("DELETE")

	api.HandleFunc("/employees", projectHandler.GetAllEmployeesHandler).Methods("GET")

	api.HandleFunc("/notifications/read", notificationHandler.MarkNotificationAsRead).Methods("PUT")
	api.HandleFunc("/notifications/delete", notificationHandler.DeleteNotification).Methods("DELETE")
	api.HandleFunc("/notifications/{username}", notificationHandler.GetNotificationsByUsername).Methods("GET")
	api.HandleFunc("/notifications/{username}/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")

	// Serve stored attachments.
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
