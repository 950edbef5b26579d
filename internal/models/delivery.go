package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery lifecycle statuses. Linear: pending -> assigned -> completed -> approved.
const (
	StatusPending   = "pending"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
	StatusApproved  = "approved"
)

// ProofOfDelivery holds storage references for the media uploaded by the
// driver when a job is handed over: package photos, a photo of the
// drop-off location and the recipient's signature.
type ProofOfDelivery struct {
	PackageImages []string  `bson:"packageImages" json:"packageImages"`
	LocationImage string    `bson:"locationImage" json:"locationImage"`
	Signature     string    `bson:"signature" json:"signature"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
}

// Delivery matches a document in the "deliveries" collection.
// AssignedDriverID references a user with role "driver" at assignment
// time; it can go stale if that driver is later deleted.
type Delivery struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	Destination      string             `bson:"destination" json:"destination"`
	Items            []string           `bson:"items" json:"items"`
	Status           string             `bson:"status" json:"status"`
	AssignedDriverID *string            `bson:"assignedDriverId" json:"assignedDriverId"`
	DriverName       *string            `bson:"driverName" json:"driverName"`
	CompletedAt      *time.Time         `bson:"completedAt" json:"completedAt"`
	ApprovedAt       *time.Time         `bson:"approvedAt" json:"approvedAt"`
	ApprovedBy       *string            `bson:"approvedBy" json:"approvedBy"`
	ProofOfDelivery  *ProofOfDelivery   `bson:"proofOfDelivery,omitempty" json:"proofOfDelivery,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
