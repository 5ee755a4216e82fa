package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
	"github.com/jessejferrell/Events-Hub-sub001/internal/database"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/repositories"
	"github.com/jessejferrell/Events-Hub-sub001/internal/utils"
)

func main() {
	var (
		email     = flag.String("email", "", "Admin email address")
		password  = flag.String("password", "", "Admin password")
		firstName = flag.String("first-name", "Admin", "First name")
		lastName  = flag.String("last-name", "User", "Last name")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Both -email and -password are required")
	}

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

	passwordHash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	// An existing account gets promoted and its password reset instead
	// of failing on the unique email
	existing, err := userRepo.GetByEmail(ctx, *email)
	switch {
	case err == nil:
		if err := userRepo.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			log.Fatal("Failed to promote user:", err)
		}
		if err := userRepo.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
			log.Fatal("Failed to update password:", err)
		}
		fmt.Printf("Existing user %s promoted to admin (ID: %d)\n", existing.Email, existing.ID)
		return
	case !errors.Is(err, models.ErrUserNotFound):
		log.Fatal("Failed to look up user:", err)
	}

	user, err := userRepo.Create(ctx, &models.UserCreateRequest{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
		Role:      models.RoleAdmin,
	}, passwordHash)
	if err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("User ID: %d\n", user.ID)
}
