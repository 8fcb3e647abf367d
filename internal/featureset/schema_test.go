package featureset

import "testing"

func TestValidateMetadataDocument_AcceptsWellFormed(t *testing.T) {
	data := []byte(`[{"id": "helloworld", "name": "Hello World"}]`)
	if err := validateMetadataDocument("local-cache", data); err != nil {
		t.Fatalf("expected valid document to pass, got %v", err)
	}
}

func TestValidateMetadataDocument_RejectsMissingID(t *testing.T) {
	data := []byte(`[{"name": "Hello World"}]`)
	if err := validateMetadataDocument("local-cache", data); err == nil {
		t.Fatal("expected missing id to fail validation")
	}
}
