// server/internal/api/handlers/proof_handler.go
package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"delivery-ops-api-server/internal/models"
	"delivery-ops-api-server/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProofHandler struct {
	DB    *mongo.Database
	Media storage.MediaStore
}

type UploadProofRequest struct {
	PackageImages []string `json:"packageImages"`
	LocationImage string   `json:"locationImage"`
	Signature     string   `json:"signature"`
}

// decodeImagePayload strips an optional "data:<mime>;base64," prefix
// and decodes the remainder.
func decodeImagePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ";base64,")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		payload = payload[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// UploadProofOfDelivery ingests the POD bundle: package photos, a
// drop-off location photo and the recipient signature. Files are
// written one by one; a failure partway leaves the already written
// files in place and fails the request. The produced references are
// persisted onto the delivery so the read path serves them.
func (h *ProofHandler) UploadProofOfDelivery(c *gin.Context) {
	deliveryID := c.Param("id")

	var req UploadProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.PackageImages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one package image is required"})
		return
	}
	if req.LocationImage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location image is required"})
		return
	}
	if req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature is required"})
		return
	}

	deliveryHandler := DeliveryHandler{DB: h.DB}
	_, oid, ok := deliveryHandler.findDelivery(c)
	if !ok {
		return
	}

	// Decode everything up front so a bad payload writes no files.
	packageData := make([][]byte, 0, len(req.PackageImages))
	for i, payload := range req.PackageImages {
		data, err := decodeImagePayload(payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Package image %d is not valid base64", i+1)})
			return
		}
		packageData = append(packageData, data)
	}
	locationData, err := decodeImagePayload(req.LocationImage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location image is not valid base64"})
		return
	}
	signatureData, err := decodeImagePayload(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature is not valid base64"})
		return
	}

	ctx := context.Background()

	packageRefs := make([]string, 0, len(packageData))
	for i, data := range packageData {
		key := fmt.Sprintf("deliveries/%s/%s_%d.jpg", deliveryID, deliveryID, i+1)
		ref, err := h.Media.Save(ctx, key, bytes.NewReader(data))
		if err != nil {
			log.Printf("POD package image upload error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store package image"})
			return
		}
		packageRefs = append(packageRefs, ref)
	}

	locationRef, err := h.Media.Save(ctx, fmt.Sprintf("deliveries/%s/%s_sign.jpg", deliveryID, deliveryID), bytes.NewReader(locationData))
	if err != nil {
		log.Printf("POD location image upload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store location image"})
		return
	}

	signatureRef, err := h.Media.Save(ctx, fmt.Sprintf("deliveries/%s/%s_DO.jpg", deliveryID, deliveryID), bytes.NewReader(signatureData))
	if err != nil {
		log.Printf("POD signature upload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store signature"})
		return
	}

	proof := models.ProofOfDelivery{
		PackageImages: packageRefs,
		LocationImage: locationRef,
		Signature:     signatureRef,
		Timestamp:     time.Now(),
	}

	_, err = h.DB.Collection("deliveries").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"proofOfDelivery": proof,
		"updatedAt":       time.Now(),
	}})
	if err != nil {
		log.Printf("POD persist error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Proof of delivery uploaded successfully",
		"packageImages": proof.PackageImages,
		"locationImage": proof.LocationImage,
		"signature":     proof.Signature,
	})
}

// GetProofOfDelivery returns the delivery with its proof block. A job
// without an uploaded proof gets empty references, not a 404.
func (h *ProofHandler) GetProofOfDelivery(c *gin.Context) {
	deliveryHandler := DeliveryHandler{DB: h.DB}
	delivery, _, ok := deliveryHandler.findDelivery(c)
	if !ok {
		return
	}

	proof := models.ProofOfDelivery{PackageImages: []string{}}
	if delivery.ProofOfDelivery != nil {
		proof = *delivery.ProofOfDelivery
	}

	c.JSON(http.StatusOK, gin.H{
		"delivery":        delivery,
		"proofOfDelivery": proof,
	})
}
