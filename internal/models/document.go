package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Document types for compliance documents.
const (
	DocTypeLicense   = "license"
	DocTypeInsurance = "insurance"
)

// ComplianceDocument represents a license or insurance record attached to a
// vehicle. A vehicle without a document of a given type simply has no
// obligation for it.
type ComplianceDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	DocType   string             `bson:"doc_type" json:"doc_type"` // "license" or "insurance"

	// Descriptive fields carried through into notification payloads but
	// never used in classification.
	LicenseNumber string `bson:"license_number,omitempty" json:"license_number,omitempty"`
	PolicyNumber  string `bson:"policy_number,omitempty" json:"policy_number,omitempty"`
	Provider      string `bson:"provider,omitempty" json:"provider,omitempty"`

	ExpireDate time.Time `bson:"expire_date" json:"expire_date"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Reference returns the document's display number, whichever type it is.
func (d *ComplianceDocument) Reference() string {
	if d.DocType == DocTypeInsurance {
		return d.PolicyNumber
	}
	return d.LicenseNumber
}

// IsValidDocType checks if a document type is one of the known types.
func IsValidDocType(docType string) bool {
	return docType == DocTypeLicense || docType == DocTypeInsurance
}
