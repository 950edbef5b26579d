package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles stored on user documents and embedded in JWT claims.
const (
	RoleDriver     = "driver"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User matches a document in the "users" collection.
// Username is unique across all users (enforced by index, see database.EnsureIndexes).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Fullname     string             `bson:"fullname" json:"fullname"`
	Phone        string             `bson:"phone" json:"phone"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile is the sanitized view of a User returned to clients.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Role:     u.Role,
		Fullname: u.Fullname,
		Phone:    u.Phone,
	}
}
