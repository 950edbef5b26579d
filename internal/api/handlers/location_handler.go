// server/internal/api/handlers/location_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"delivery-ops-api-server/internal/api/middleware"
	"delivery-ops-api-server/internal/models"
	"delivery-ops-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LocationHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type IngestLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Speed     float64  `json:"speed"`
}

// GetAllLocations returns the newest sample for every driver. One
// sub-query per driver; linear in fleet size.
func (h *LocationHandler) GetAllLocations(c *gin.Context) {
	cursor, err := h.DB.Collection("users").Find(context.Background(), bson.M{"role": models.RoleDriver})
	if err != nil {
		log.Printf("Location driver list error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer cursor.Close(context.Background())

	var drivers []models.User
	if err := cursor.All(context.Background(), &drivers); err != nil {
		log.Printf("Location driver decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	locations := make([]models.DriverLocation, 0, len(drivers))
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	for _, driver := range drivers {
		var sample models.LocationSample
		err := h.DB.Collection("driver_locations").
			FindOne(context.Background(), bson.M{"driverId": driver.ID.Hex()}, opts).
			Decode(&sample)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				continue // drivers with no samples are omitted
			}
			log.Printf("Latest location query error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		locations = append(locations, models.DriverLocation{
			UserID:    driver.ID.Hex(),
			Latitude:  sample.Latitude,
			Longitude: sample.Longitude,
			Speed:     sample.Speed,
			Timestamp: sample.Timestamp,
		})
	}

	c.JSON(http.StatusOK, locations)
}

// GetLocationByDriver returns the full history for one driver, newest
// first. 404 when the driver has no samples.
func (h *LocationHandler) GetLocationByDriver(c *gin.Context) {
	driverID := c.Param("driverId")

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := h.DB.Collection("driver_locations").Find(context.Background(), bson.M{"driverId": driverID}, opts)
	if err != nil {
		log.Printf("Location history query error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer cursor.Close(context.Background())

	var logs []models.LocationSample
	if err := cursor.All(context.Background(), &logs); err != nil {
		log.Printf("Location history decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if len(logs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No location logs found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": driverID,
		"logs":   logs,
	})
}

// IngestLocation appends a GPS sample for the calling driver and
// broadcasts it to connected dashboard clients.
func (h *LocationHandler) IngestLocation(c *gin.Context) {
	var req IngestLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	driverID := c.GetString(middleware.CtxUserID)
	sample := models.LocationSample{
		DriverID:  driverID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Speed:     req.Speed,
		Timestamp: time.Now(),
	}

	_, err := h.DB.Collection("driver_locations").InsertOne(context.Background(), sample)
	if err != nil {
		log.Printf("Location ingest error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if h.Hub != nil {
		ping, err := json.Marshal(models.DriverLocation{
			UserID:    driverID,
			Latitude:  sample.Latitude,
			Longitude: sample.Longitude,
			Speed:     sample.Speed,
			Timestamp: sample.Timestamp,
		})
		if err == nil {
			h.Hub.Broadcast(ping)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Location recorded"})
}
