// server/internal/api/handlers/driver_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"delivery-ops-api-server/config"
	"delivery-ops-api-server/internal/auth"
	"delivery-ops-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DriverHandler struct {
	DB  *mongo.Database
	Cfg config.Config
}

type UpdateDriverRequest struct {
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// CreateDriver creates a driver account. Route is admin/superadmin-only.
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	authHandler := AuthHandler{DB: h.DB, Cfg: h.Cfg}
	id, ok := authHandler.createAccount(c, models.RoleDriver)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Driver account created", "driverId": id})
}

// GetDrivers lists every user with role "driver", password hash stripped.
func (h *DriverHandler) GetDrivers(c *gin.Context) {
	cursor, err := h.DB.Collection("users").Find(context.Background(), bson.M{"role": models.RoleDriver})
	if err != nil {
		log.Printf("Get drivers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err := cursor.All(context.Background(), &users); err != nil {
		log.Printf("Decode drivers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	drivers := make([]models.Profile, 0, len(users))
	for _, u := range users {
		drivers = append(drivers, u.Profile())
	}

	c.JSON(http.StatusOK, drivers)
}

// findDriver resolves :id to a driver user, writing the error response
// itself when the document is absent or is not a driver.
func (h *DriverHandler) findDriver(c *gin.Context) (models.User, primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return models.User{}, oid, false
	}

	var user models.User
	err = h.DB.Collection("users").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			log.Printf("Get driver error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return models.User{}, oid, false
	}

	if user.Role != models.RoleDriver {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This user is not a driver"})
		return models.User{}, oid, false
	}

	return user, oid, true
}

func (h *DriverHandler) GetDriverByID(c *gin.Context) {
	user, _, ok := h.findDriver(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

// UpdateDriver patches fullname/phone/password; omitted fields stay as
// they are. A supplied password is re-hashed.
func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	_, oid, ok := h.findDriver(c)
	if !ok {
		return
	}

	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := bson.M{"updatedAt": time.Now()}
	if req.Fullname != "" {
		updates["fullname"] = req.Fullname
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Password != "" {
		updates["passwordHash"] = auth.HashPassword(req.Password, h.Cfg.Auth.PasswordSalt)
	}

	_, err := h.DB.Collection("users").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": updates})
	if err != nil {
		log.Printf("Update driver error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver updated"})
}

// DeleteDriver hard-deletes the account. Deliveries still assigned to
// the driver keep their stale assignedDriverId.
func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	_, oid, ok := h.findDriver(c)
	if !ok {
		return
	}

	_, err := h.DB.Collection("users").DeleteOne(context.Background(), bson.M{"_id": oid})
	if err != nil {
		log.Printf("Delete driver error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted"})
}
