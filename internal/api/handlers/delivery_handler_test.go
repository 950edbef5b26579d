package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"delivery-ops-api-server/internal/api/middleware"
	"delivery-ops-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func deliveryDoc(id primitive.ObjectID, status string, assignedDriverID interface{}) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: "Box A"},
		{Key: "description", Value: ""},
		{Key: "destination", Value: "123 St"},
		{Key: "items", Value: bson.A{"X"}},
		{Key: "status", Value: status},
		{Key: "assignedDriverId", Value: assignedDriverID},
		{Key: "driverName", Value: nil},
		{Key: "completedAt", Value: nil},
		{Key: "approvedAt", Value: nil},
		{Key: "approvedBy", Value: nil},
		{Key: "createdAt", Value: time.Now()},
		{Key: "updatedAt", Value: time.Now()},
	}
}

// serveDelivery routes one request through the handler with the given
// caller identity preloaded, the way Authenticate would do it.
func serveDelivery(t *testing.T, h *DeliveryHandler, method, path string, body any, callerID, callerRole string, register func(*gin.Engine, gin.HandlerFunc)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	identity := func(c *gin.Context) {
		c.Set(middleware.CtxUserID, callerID)
		c.Set(middleware.CtxUserRole, callerRole)
	}
	register(r, identity)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMarkCompleted_NotAssignedDriver(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("caller is not the assigned driver", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "testdb.deliveries", mtest.FirstBatch,
			deliveryDoc(id, models.StatusAssigned, "driver-a")))

		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodPost, "/api/deliveries/"+id.Hex()+"/complete", nil,
			"driver-b", models.RoleDriver,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.POST("/api/deliveries/:id/complete", identity, h.MarkCompleted)
			})

		if w.Code != http.StatusForbidden {
			mt.Fatalf("expected 403, got %d (%s)", w.Code, w.Body.String())
		}
	})

	mt.Run("unassigned delivery", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "testdb.deliveries", mtest.FirstBatch,
			deliveryDoc(id, models.StatusPending, nil)))

		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodPost, "/api/deliveries/"+id.Hex()+"/complete", nil,
			"driver-b", models.RoleDriver,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.POST("/api/deliveries/:id/complete", identity, h.MarkCompleted)
			})

		if w.Code != http.StatusForbidden {
			mt.Fatalf("expected 403, got %d", w.Code)
		}
	})
}

func TestMarkCompleted_AssignedDriver(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigned driver completes", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "testdb.deliveries", mtest.FirstBatch,
				deliveryDoc(id, models.StatusAssigned, "driver-a")),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodPost, "/api/deliveries/"+id.Hex()+"/complete", nil,
			"driver-a", models.RoleDriver,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.POST("/api/deliveries/:id/complete", identity, h.MarkCompleted)
			})

		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
	})
}

// Approval has no precondition on the prior status: a pending job can
// be approved directly. This permissiveness is intentional behaviour,
// not an oversight in the handler.
func TestApproveDelivery_FromAnyState(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	for _, status := range []string{models.StatusPending, models.StatusAssigned, models.StatusCompleted} {
		mt.Run("approve from "+status, func(mt *mtest.T) {
			id := primitive.NewObjectID()
			mt.AddMockResponses(
				mtest.CreateCursorResponse(0, "testdb.deliveries", mtest.FirstBatch,
					deliveryDoc(id, status, nil)),
				mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			)

			h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
			w := serveDelivery(mt.T, h, http.MethodPost, "/api/deliveries/"+id.Hex()+"/approve", nil,
				"admin-1", models.RoleAdmin,
				func(r *gin.Engine, identity gin.HandlerFunc) {
					r.POST("/api/deliveries/:id/approve", identity, h.ApproveDelivery)
				})

			if w.Code != http.StatusOK {
				mt.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestAssignDriver_TargetNotADriver(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("target user has role admin", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		targetID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "testdb.deliveries", mtest.FirstBatch,
				deliveryDoc(id, models.StatusPending, nil)),
			mtest.CreateCursorResponse(0, "testdb.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: targetID},
				{Key: "username", Value: "not-a-driver"},
				{Key: "passwordHash", Value: "x"},
				{Key: "role", Value: models.RoleAdmin},
				{Key: "fullname", Value: "Back Office"},
				{Key: "phone", Value: "555"},
			}),
		)

		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodPatch, "/api/deliveries/"+id.Hex()+"/assign",
			map[string]string{"driverId": targetID.Hex()},
			"admin-1", models.RoleAdmin,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.PATCH("/api/deliveries/:id/assign", identity, h.AssignDriver)
			})

		// No update response was primed: if the handler tried to write
		// the delivery anyway, the mock would fail the request with 500.
		if w.Code != http.StatusBadRequest {
			mt.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
		}
	})

	mt.Run("malformed driver id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "testdb.deliveries", mtest.FirstBatch,
			deliveryDoc(id, models.StatusPending, nil)))

		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodPatch, "/api/deliveries/"+id.Hex()+"/assign",
			map[string]string{"driverId": "not-a-hex-id"},
			"admin-1", models.RoleAdmin,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.PATCH("/api/deliveries/:id/assign", identity, h.AssignDriver)
			})

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestGetDeliveryByID_NotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("absent document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "testdb.deliveries", mtest.FirstBatch))

		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodGet, "/api/deliveries/"+id.Hex(), nil,
			"driver-a", models.RoleDriver,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.GET("/api/deliveries/:id", identity, h.GetDeliveryByID)
			})

		if w.Code != http.StatusNotFound {
			mt.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestCreateDelivery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("valid input", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodPost, "/api/deliveries",
			map[string]any{"title": "Box A", "destination": "123 St", "items": []string{"X"}},
			"admin-1", models.RoleAdmin,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.POST("/api/deliveries", identity, h.CreateDelivery)
			})

		if w.Code != http.StatusCreated {
			mt.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
		}

		var resp struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			mt.Fatalf("unmarshal error: %v", err)
		}
		if _, err := primitive.ObjectIDFromHex(resp.ID); err != nil {
			mt.Fatalf("response id %q is not a valid object id", resp.ID)
		}
	})

	mt.Run("missing title", func(mt *mtest.T) {
		h := &DeliveryHandler{DB: mt.Client.Database("testdb")}
		w := serveDelivery(mt.T, h, http.MethodPost, "/api/deliveries",
			map[string]any{"destination": "123 St", "items": []string{"X"}},
			"admin-1", models.RoleAdmin,
			func(r *gin.Engine, identity gin.HandlerFunc) {
				r.POST("/api/deliveries", identity, h.CreateDelivery)
			})

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
