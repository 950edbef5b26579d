// server/internal/database/seeder.go
package database

import (
	"context"
	"log"
	"time"

	"delivery-ops-api-server/config"
	"delivery-ops-api-server/internal/auth"
	"delivery-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedSuperAdmin creates the bootstrap superadmin account if it does
// not exist yet. Without it there is no account able to create admins.
func SeedSuperAdmin(db *mongo.Database, cfg config.Config) error {
	userCollection := db.Collection("users")

	username := cfg.Auth.SuperAdminUsername
	if username == "" {
		username = "superadmin"
	}

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"username": username})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Super admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Super admin not found. Seeding...")
	password := cfg.Auth.SuperAdminPassword
	if password == "" {
		password = "superadminpassword"
	}

	superAdmin := models.User{
		Username:     username,
		PasswordHash: auth.HashPassword(password, cfg.Auth.PasswordSalt),
		Role:         models.RoleSuperAdmin,
		Fullname:     "Super Admin",
		Phone:        "",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	_, err = userCollection.InsertOne(context.Background(), superAdmin)
	if err != nil {
		return err
	}

	log.Println("Super admin seeded successfully.")
	return nil
}
