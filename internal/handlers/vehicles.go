package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/motominder/motominder/internal/compliance"
	"github.com/motominder/motominder/internal/db"
	"github.com/motominder/motominder/internal/middleware"
	"github.com/motominder/motominder/internal/models"
	"github.com/motominder/motominder/internal/service"
)

// VehicleHandler handles vehicle and per-vehicle compliance requests
type VehicleHandler struct {
	vehicles   db.VehicleCollection
	documents  db.DocumentCollection
	compliance *service.ComplianceService
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection, documents db.DocumentCollection, complianceService *service.ComplianceService) *VehicleHandler {
	return &VehicleHandler{
		vehicles:   vehicles,
		documents:  documents,
		compliance: complianceService,
	}
}

// Collection handles /api/vehicles: list on GET, create on POST.
func (h *VehicleHandler) Collection(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		vehicles, err := h.vehicles.ListVehicles(r.Context(), claims.OwnerID)
		if err != nil {
			http.Error(w, "Failed to load vehicles", http.StatusInternalServerError)
			return
		}
		if vehicles == nil {
			vehicles = []models.Vehicle{}
		}
		writeJSON(w, http.StatusOK, vehicles)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var vehicle models.Vehicle
		if err := json.Unmarshal(body, &vehicle); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if vehicle.Brand == "" || vehicle.Model == "" {
			http.Error(w, "Brand and model are required", http.StatusBadRequest)
			return
		}
		if vehicle.CurrentMileage < 0 {
			http.Error(w, "Mileage must not be negative", http.StatusBadRequest)
			return
		}
		vehicle.OwnerID = claims.OwnerID

		id, err := h.vehicles.InsertVehicle(r.Context(), vehicle)
		if err != nil {
			http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item handles /api/vehicles/{id} and its sub-resources:
//
//	GET/PUT/DELETE /api/vehicles/{id}
//	POST           /api/vehicles/{id}/mileage
//	POST           /api/vehicles/{id}/done
//	GET            /api/vehicles/{id}/obligations
//	GET/POST       /api/vehicles/{id}/documents
func (h *VehicleHandler) Item(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/vehicles"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Vehicle id required", http.StatusBadRequest)
		return
	}
	vehicleID := parts[0]

	if len(parts) == 1 {
		h.vehicleItem(w, r, claims.OwnerID, vehicleID)
		return
	}

	switch parts[1] {
	case "mileage":
		h.updateMileage(w, r, claims.OwnerID, vehicleID)
	case "done":
		h.markDone(w, r, claims.OwnerID, vehicleID)
	case "obligations":
		h.vehicleObligations(w, r, claims.OwnerID, vehicleID)
	case "documents":
		h.vehicleDocuments(w, r, claims.OwnerID, vehicleID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *VehicleHandler) vehicleItem(w http.ResponseWriter, r *http.Request, ownerID, vehicleID string) {
	switch r.Method {
	case http.MethodGet:
		vehicle, err := h.vehicles.FindVehicleByID(r.Context(), ownerID, vehicleID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "Vehicle not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to load vehicle", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, vehicle)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var updateReq struct {
			Brand *string `json:"brand"`
			Model *string `json:"model"`
			Type  *string `json:"type"`
			Plate *string `json:"plate"`
		}
		if err := json.Unmarshal(body, &updateReq); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		fields := bson.M{}
		if updateReq.Brand != nil {
			fields["brand"] = *updateReq.Brand
		}
		if updateReq.Model != nil {
			fields["model"] = *updateReq.Model
		}
		if updateReq.Type != nil {
			fields["type"] = *updateReq.Type
		}
		if updateReq.Plate != nil {
			fields["plate"] = *updateReq.Plate
		}
		if len(fields) == 0 {
			http.Error(w, "No fields to update", http.StatusBadRequest)
			return
		}

		if err := h.vehicles.UpdateVehicleFields(r.Context(), ownerID, vehicleID, fields); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "Vehicle not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to update vehicle", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle updated successfully"})

	case http.MethodDelete:
		if err := h.vehicles.DeleteVehicle(r.Context(), ownerID, vehicleID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "Vehicle not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to delete vehicle", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted successfully"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *VehicleHandler) updateMileage(w http.ResponseWriter, r *http.Request, ownerID, vehicleID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var mileageReq struct {
		Mileage int `json:"mileage"`
	}
	if err := json.Unmarshal(body, &mileageReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.compliance.UpdateMileage(r.Context(), ownerID, vehicleID, mileageReq.Mileage); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			http.Error(w, "Vehicle not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNegativeMileage), errors.Is(err, service.ErrMissingOwner):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to update mileage", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mileage updated successfully"})
}

func (h *VehicleHandler) markDone(w http.ResponseWriter, r *http.Request, ownerID, vehicleID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var doneReq struct {
		Category compliance.Category `json:"category"`
	}
	if err := json.Unmarshal(body, &doneReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	obligations, err := h.compliance.MarkDone(r.Context(), ownerID, vehicleID, doneReq.Category, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			http.Error(w, "Vehicle not found", http.StatusNotFound)
		case errors.Is(err, service.ErrUnknownCategory), errors.Is(err, service.ErrDocumentCategory):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to mark service done", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"obligations": obligations})
}

func (h *VehicleHandler) vehicleObligations(w http.ResponseWriter, r *http.Request, ownerID, vehicleID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	obligations, err := h.compliance.EvaluateVehicle(r.Context(), ownerID, vehicleID, time.Now())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to evaluate vehicle", http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("all") == "" {
		obligations = compliance.Actionable(obligations)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"obligations": obligations})
}

func (h *VehicleHandler) vehicleDocuments(w http.ResponseWriter, r *http.Request, ownerID, vehicleID string) {
	switch r.Method {
	case http.MethodGet:
		docType := r.URL.Query().Get("type")
		if docType != "" && !models.IsValidDocType(docType) {
			http.Error(w, "Invalid document type", http.StatusBadRequest)
			return
		}
		docs, err := h.documents.ListDocuments(r.Context(), ownerID, vehicleID, docType)
		if err != nil {
			http.Error(w, "Failed to load documents", http.StatusInternalServerError)
			return
		}
		if docs == nil {
			docs = []models.ComplianceDocument{}
		}
		writeJSON(w, http.StatusOK, docs)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var doc models.ComplianceDocument
		if err := json.Unmarshal(body, &doc); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if !models.IsValidDocType(doc.DocType) {
			http.Error(w, "Invalid document type", http.StatusBadRequest)
			return
		}
		if doc.ExpireDate.IsZero() {
			http.Error(w, "Expire date is required", http.StatusBadRequest)
			return
		}
		doc.OwnerID = ownerID
		doc.VehicleID = vehicleID

		id, err := h.documents.InsertDocument(r.Context(), doc)
		if err != nil {
			http.Error(w, "Failed to create document", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
