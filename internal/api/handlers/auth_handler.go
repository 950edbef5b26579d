// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"delivery-ops-api-server/config"
	"delivery-ops-api-server/internal/api/middleware"
	"delivery-ops-api-server/internal/auth"
	"delivery-ops-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthHandler struct {
	DB  *mongo.Database
	Cfg config.Config
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateAccountRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Fullname string `json:"fullname" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

func (h *AuthHandler) tokenExpiration() time.Duration {
	d, err := time.ParseDuration(h.Cfg.JWT.Expiration)
	if err != nil || d <= 0 {
		return auth.DefaultExpiration
	}
	return d
}

// login is the shared credential check. requireRoles limits which roles
// may obtain a session through the calling endpoint.
func (h *AuthHandler) login(c *gin.Context, requireRoles ...string) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"username": req.Username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Login lookup error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	if !auth.CheckPasswordHash(req.Password, h.Cfg.Auth.PasswordSalt, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	allowed := false
	for _, role := range requireRoles {
		if user.Role == role {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for this role"})
		return
	}

	token, err := auth.GenerateJWT([]byte(h.Cfg.JWT.Secret), user.ID.Hex(), user.Username, user.Role, h.tokenExpiration())
	if err != nil {
		log.Printf("Token generation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user.Profile(),
	})
}

// Login issues an admin-scoped session. Drivers are rejected here even
// with correct credentials; they authenticate via DriverLogin.
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, models.RoleAdmin, models.RoleSuperAdmin)
}

// DriverLogin issues a driver-scoped session for the mobile app.
func (h *AuthHandler) DriverLogin(c *gin.Context) {
	h.login(c, models.RoleDriver)
}

// CreateAdmin creates an admin account. Route is superadmin-only.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	id, ok := h.createAccount(c, models.RoleAdmin)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "userId": id})
}

// createAccount is shared by admin and driver creation: validate input,
// reject duplicate usernames, hash the password, insert.
func (h *AuthHandler) createAccount(c *gin.Context, role string) (string, bool) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields required"})
		return "", false
	}

	collection := h.DB.Collection("users")

	// Fast path for the common case; the unique index on username
	// catches the race window between this read and the insert.
	count, err := collection.CountDocuments(context.Background(), bson.M{"username": req.Username})
	if err != nil {
		log.Printf("Username check error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return "", false
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return "", false
	}

	newUser := models.User{
		Username:     req.Username,
		PasswordHash: auth.HashPassword(req.Password, h.Cfg.Auth.PasswordSalt),
		Role:         role,
		Fullname:     req.Fullname,
		Phone:        req.Phone,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newUser)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		} else {
			log.Printf("Create account error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return "", false
	}

	oid, _ := result.InsertedID.(primitive.ObjectID)
	return oid.Hex(), true
}

// Me returns the caller's own profile, looked up fresh so a deleted
// account stops resolving even while its token is still valid.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var user models.User
	err = h.DB.Collection("users").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Me lookup error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}
