package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationSample is one GPS ping in the "driver_locations" collection.
// Append-only; "latest" queries sort by timestamp descending.
type LocationSample struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DriverID  string             `bson:"driverId" json:"-"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	Speed     float64            `bson:"speed" json:"speed"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// DriverLocation is the fleet-view shape: one driver, their newest sample.
type DriverLocation struct {
	UserID    string    `json:"userId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}
