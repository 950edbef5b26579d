// server/internal/api/handlers/delivery_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"delivery-ops-api-server/internal/api/middleware"
	"delivery-ops-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DeliveryHandler struct {
	DB *mongo.Database
}

type CreateDeliveryRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Destination string   `json:"destination" binding:"required"`
	Items       []string `json:"items" binding:"required"`
}

type AssignDriverRequest struct {
	DriverID string `json:"driverId" binding:"required"`
}

// CreateDelivery creates a new job in status "pending" with all
// assignment and approval fields null.
func (h *DeliveryHandler) CreateDelivery(c *gin.Context) {
	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	newDelivery := models.Delivery{
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		Items:       req.Items,
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := h.DB.Collection("deliveries").InsertOne(context.Background(), newDelivery)
	if err != nil {
		log.Printf("Create delivery error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	oid, _ := result.InsertedID.(primitive.ObjectID)
	c.JSON(http.StatusCreated, gin.H{"message": "Delivery created", "id": oid.Hex()})
}

// GetDeliveries lists every delivery, newest first. No pagination.
func (h *DeliveryHandler) GetDeliveries(c *gin.Context) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("deliveries").Find(context.Background(), bson.M{}, opts)
	if err != nil {
		log.Printf("Get deliveries error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer cursor.Close(context.Background())

	var deliveries []models.Delivery
	if err := cursor.All(context.Background(), &deliveries); err != nil {
		log.Printf("Decode deliveries error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if deliveries == nil {
		deliveries = []models.Delivery{}
	}

	c.JSON(http.StatusOK, deliveries)
}

// findDelivery resolves :id, writing the 404 itself when absent.
func (h *DeliveryHandler) findDelivery(c *gin.Context) (models.Delivery, primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		return models.Delivery{}, oid, false
	}

	var delivery models.Delivery
	err = h.DB.Collection("deliveries").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&delivery)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		} else {
			log.Printf("Get delivery error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return models.Delivery{}, oid, false
	}

	return delivery, oid, true
}

func (h *DeliveryHandler) GetDeliveryByID(c *gin.Context) {
	delivery, _, ok := h.findDelivery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, delivery)
}

// UpdateDelivery is the admin override: a merge-patch of whatever
// fields the caller supplies, including status. Lifecycle guards live
// in the dedicated assign/complete/approve handlers; this endpoint
// deliberately bypasses them.
func (h *DeliveryHandler) UpdateDelivery(c *gin.Context) {
	_, oid, ok := h.findDelivery(c)
	if !ok {
		return
	}

	var updates bson.M
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Immutable keys are never patched.
	delete(updates, "_id")
	delete(updates, "id")
	delete(updates, "createdAt")
	updates["updatedAt"] = time.Now()

	_, err := h.DB.Collection("deliveries").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": updates})
	if err != nil {
		log.Printf("Update delivery error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery updated"})
}

// AssignDriver validates the target is an existing driver, then sets
// the assignment fields and moves the job to "assigned".
func (h *DeliveryHandler) AssignDriver(c *gin.Context) {
	_, oid, ok := h.findDelivery(c)
	if !ok {
		return
	}

	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "driverId is required"})
		return
	}

	driverOID, err := primitive.ObjectIDFromHex(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID"})
		return
	}

	var driver models.User
	err = h.DB.Collection("users").FindOne(context.Background(), bson.M{"_id": driverOID}).Decode(&driver)
	if err != nil || driver.Role != models.RoleDriver {
		if err != nil && err != mongo.ErrNoDocuments {
			log.Printf("Assign driver lookup error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID"})
		return
	}

	_, err = h.DB.Collection("deliveries").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"assignedDriverId": req.DriverID,
		"driverName":       driver.Fullname,
		"status":           models.StatusAssigned,
		"updatedAt":        time.Now(),
	}})
	if err != nil {
		log.Printf("Assign driver error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver assigned"})
}

// MarkCompleted moves the job to "completed". Only the currently
// assigned driver may do this.
func (h *DeliveryHandler) MarkCompleted(c *gin.Context) {
	delivery, oid, ok := h.findDelivery(c)
	if !ok {
		return
	}

	callerID := c.GetString(middleware.CtxUserID)
	if delivery.AssignedDriverID == nil || *delivery.AssignedDriverID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your delivery"})
		return
	}

	now := time.Now()
	_, err := h.DB.Collection("deliveries").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":      models.StatusCompleted,
		"completedAt": now,
		"updatedAt":   now,
	}})
	if err != nil {
		log.Printf("Complete delivery error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery marked completed"})
}

// ApproveDelivery stamps approval. There is no precondition on the
// prior status: an admin can approve from any state.
func (h *DeliveryHandler) ApproveDelivery(c *gin.Context) {
	_, oid, ok := h.findDelivery(c)
	if !ok {
		return
	}

	now := time.Now()
	_, err := h.DB.Collection("deliveries").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":     models.StatusApproved,
		"approvedAt": now,
		"approvedBy": c.GetString(middleware.CtxUserID),
		"updatedAt":  now,
	}})
	if err != nil {
		log.Printf("Approve delivery error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery approved"})
}

// DeleteDelivery hard-deletes the job in any state.
func (h *DeliveryHandler) DeleteDelivery(c *gin.Context) {
	_, oid, ok := h.findDelivery(c)
	if !ok {
		return
	}

	_, err := h.DB.Collection("deliveries").DeleteOne(context.Background(), bson.M{"_id": oid})
	if err != nil {
		log.Printf("Delete delivery error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery deleted"})
}
