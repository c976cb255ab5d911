package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/motominder/motominder/internal/models"
)

// VehicleCollection defines the interface for vehicle document operations.
// Every method is scoped by owner id; a vehicle is never visible outside its
// owner's scope.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	ListVehicles(ctx context.Context, ownerID string) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, ownerID, id string) (*models.Vehicle, error)
	// UpdateVehicleFields merges the given fields into the vehicle
	// document. Partial update, not a full overwrite.
	UpdateVehicleFields(ctx context.Context, ownerID, id string, fields bson.M) error
	DeleteVehicle(ctx context.Context, ownerID, id string) error
}

// DocumentCollection defines the interface for compliance document
// (license/insurance) operations.
type DocumentCollection interface {
	InsertDocument(ctx context.Context, doc models.ComplianceDocument) (string, error)
	// ListDocuments returns the vehicle's documents of the given type in
	// the store's default iteration order. An empty docType returns all.
	ListDocuments(ctx context.Context, ownerID, vehicleID, docType string) ([]models.ComplianceDocument, error)
	DeleteDocument(ctx context.Context, ownerID, id string) error
}
