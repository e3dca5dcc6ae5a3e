// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/unclebandit/mailmirror-backend/internal/controller"
	"github.com/unclebandit/mailmirror-backend/internal/db"
	"github.com/unclebandit/mailmirror-backend/internal/handler"
	"github.com/unclebandit/mailmirror-backend/internal/mailchimp"
	"github.com/unclebandit/mailmirror-backend/internal/queue"
	"github.com/unclebandit/mailmirror-backend/internal/repository"
	"github.com/unclebandit/mailmirror-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	categoryRepo := &repository.CategoryRepository{DB: db.DB}

	mcClient, err := mailchimp.NewClient(os.Getenv("MAILCHIMP_API_KEY"))
	if err != nil {
		log.Fatal("invalid MAILCHIMP_API_KEY:", err)
	}

	syncService := &service.SyncService{
		CampaignRepo: campaignRepo,
		CategoryRepo: categoryRepo,
	}

	q := queue.NewInMemoryQueue()
	queue.StartCampaignSyncSubscriber(q, syncService, mcClient)

	// Optional periodic trigger, e.g. SYNC_INTERVAL=6h
	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal("invalid SYNC_INTERVAL:", err)
		}
		go func() {
			for range time.Tick(interval) {
				if err := q.Publish(queue.TopicCampaignSync, "interval"); err != nil {
					log.Println("⚠️ failed to publish sync trigger:", err)
				}
			}
		}()
		log.Println("⏰ Periodic sync every", interval)
	}

	campaignController := &controller.CampaignController{
		CampaignRepo: campaignRepo,
		SyncService:  syncService,
		Fetcher:      mcClient,
	}
	categoryController := &controller.CategoryController{
		CategoryRepo: categoryRepo,
	}
	archiveHandler := handler.NewArchiveHandler(campaignRepo)
	subscribeHandler := handler.NewSubscribeHandler(mcClient)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// Admin routes
	r.Post("/sync", campaignController.TriggerSync)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Patch("/campaigns/{id}", campaignController.UpdateCampaign)
	r.Get("/categories", categoryController.ListCategories)
	r.Post("/categories", categoryController.CreateCategory)
	r.Patch("/categories/{id}", categoryController.UpdateCategory)
	r.Delete("/categories/{id}", categoryController.DeleteCategory)
	r.Post("/categories/{id}/keywords", categoryController.CreateKeyword)
	r.Patch("/keywords/{id}", categoryController.UpdateKeyword)
	r.Delete("/keywords/{id}", categoryController.DeleteKeyword)

	// Public widget routes
	r.Get("/archive", archiveHandler.ListPublishedHandler)
	r.Get("/archive/{slug}", archiveHandler.GetBySlugHandler)
	r.Get("/selected", archiveHandler.SelectedHandler)
	r.Post("/subscribe", subscribeHandler.SubscribeHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
