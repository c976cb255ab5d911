package models

import "testing"

func TestIsValidDocType(t *testing.T) {
	valid := []string{DocTypeLicense, DocTypeInsurance}
	for _, dt := range valid {
		if !IsValidDocType(dt) {
			t.Errorf("expected %s to be valid", dt)
		}
	}

	invalid := []string{"", "passport", "License", "INSURANCE"}
	for _, dt := range invalid {
		if IsValidDocType(dt) {
			t.Errorf("expected %s to be invalid", dt)
		}
	}
}

func TestDocumentReference(t *testing.T) {
	license := ComplianceDocument{DocType: DocTypeLicense, LicenseNumber: "L-42", PolicyNumber: "unused"}
	if got := license.Reference(); got != "L-42" {
		t.Errorf("expected L-42, got %s", got)
	}

	insurance := ComplianceDocument{DocType: DocTypeInsurance, PolicyNumber: "POL-9"}
	if got := insurance.Reference(); got != "POL-9" {
		t.Errorf("expected POL-9, got %s", got)
	}

	empty := ComplianceDocument{DocType: DocTypeLicense}
	if got := empty.Reference(); got != "" {
		t.Errorf("expected empty reference, got %s", got)
	}
}
