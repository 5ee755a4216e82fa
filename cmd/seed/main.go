package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
	"github.com/jessejferrell/Events-Hub-sub001/internal/database"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/repositories"
	"github.com/jessejferrell/Events-Hub-sub001/internal/utils"
)

const (
	organizerEmail    = "organizer@cityeventshub.test"
	organizerPassword = "Organizer123!"
)

type seedProduct struct {
	Type        models.ProductType
	Name        string
	Description string
	Price       int
	Quantity    *int
}

type seedEvent struct {
	Title       string
	Slug        string
	Description string
	Location    string
	StartsIn    time.Duration
	Duration    time.Duration
	Products    []seedProduct
}

func main() {
	fmt.Println("Seeding demo data for City Events Hub")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	ctx := context.Background()
	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	productRepo := repositories.NewProductRepository(db.DB)

	organizer, err := userRepo.GetByEmail(ctx, organizerEmail)
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		passwordHash, err := utils.HashPassword(organizerPassword)
		if err != nil {
			log.Fatal("Failed to hash password:", err)
		}
		organizer, err = userRepo.Create(ctx, &models.UserCreateRequest{
			Email:     organizerEmail,
			Password:  organizerPassword,
			FirstName: "Demo",
			LastName:  "Organizer",
			Role:      models.RoleOrganizer,
		}, passwordHash)
		if err != nil {
			log.Fatal("Failed to create organizer:", err)
		}
		fmt.Printf("Created organizer %s (ID: %d)\n", organizer.Email, organizer.ID)
	case err != nil:
		log.Fatal("Failed to look up organizer:", err)
	default:
		fmt.Printf("Using existing organizer %s (ID: %d)\n", organizer.Email, organizer.ID)
	}

	capped := func(n int) *int { return &n }

	events := []seedEvent{
		{
			Title:       "Downtown Harvest Market",
			Slug:        "downtown-harvest-market",
			Description: "Seasonal produce, local makers, and live music on the square.",
			Location:    "Courthouse Square",
			StartsIn:    14 * 24 * time.Hour,
			Duration:    8 * time.Hour,
			Products: []seedProduct{
				{Type: models.ProductTicket, Name: "General Admission", Description: "All-day entry", Price: 500, Quantity: capped(500)},
				{Type: models.ProductVendorSpot, Name: "10x10 Vendor Booth", Description: "Includes one table and two chairs", Price: 7500, Quantity: capped(40)},
				{Type: models.ProductVolunteerShift, Name: "Morning Setup Crew", Description: "7am to 11am shift", Price: 0, Quantity: capped(15)},
				{Type: models.ProductMerchandise, Name: "Market Tote Bag", Description: "Heavy canvas, printed logo", Price: 1800, Quantity: capped(200)},
			},
		},
		{
			Title:       "Riverside Summer Concert",
			Slug:        "riverside-summer-concert",
			Description: "An evening of local bands at the riverside amphitheater.",
			Location:    "Riverside Amphitheater",
			StartsIn:    30 * 24 * time.Hour,
			Duration:    5 * time.Hour,
			Products: []seedProduct{
				{Type: models.ProductTicket, Name: "Lawn Seating", Description: "Bring your own blanket", Price: 1500, Quantity: capped(1000)},
				{Type: models.ProductTicket, Name: "Reserved Seating", Description: "Front section, assigned seats", Price: 3500, Quantity: capped(150)},
				{Type: models.ProductAddon, Name: "Parking Pass", Description: "Adjacent lot, in and out allowed", Price: 1000},
			},
		},
	}

	for _, se := range events {
		existing, err := eventRepo.GetBySlug(ctx, se.Slug)
		if err == nil {
			fmt.Printf("Event %q already exists (ID: %d), skipping\n", existing.Title, existing.ID)
			continue
		}
		if !errors.Is(err, models.ErrEventNotFound) {
			log.Fatal("Failed to look up event:", err)
		}

		start := time.Now().Add(se.StartsIn)
		event, err := eventRepo.Create(ctx, &models.Event{
			OrganizerID: organizer.ID,
			Title:       se.Title,
			Slug:        se.Slug,
			Description: se.Description,
			Location:    se.Location,
			StartDate:   start,
			EndDate:     start.Add(se.Duration),
			Status:      models.StatusDraft,
		})
		if err != nil {
			log.Fatal("Failed to create event:", err)
		}

		for _, sp := range se.Products {
			if _, err := productRepo.Create(ctx, &models.ProductCreateRequest{
				EventID:     event.ID,
				Type:        sp.Type,
				Name:        sp.Name,
				Description: sp.Description,
				Price:       sp.Price,
				Quantity:    sp.Quantity,
			}); err != nil {
				log.Fatal("Failed to create product:", err)
			}
		}

		if err := eventRepo.UpdateStatus(ctx, event.ID, models.StatusPublished); err != nil {
			log.Fatal("Failed to publish event:", err)
		}

		fmt.Printf("Created event %q with %d products\n", event.Title, len(se.Products))
	}

	fmt.Println("Seeding complete")
	fmt.Printf("Organizer login: %s / %s\n", organizerEmail, organizerPassword)
}
