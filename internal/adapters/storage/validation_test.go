package storage

import (
	"testing"

	"dealdesk_backend/platform/apperr"
)

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{"application/pdf", false},
		{"Application/PDF; charset=binary", false},
		{"image/jpeg", false},
		{"video/mp4", true},
		{"application/x-msdownload", true},
		{"", true},
	}

	for _, tc := range tests {
		err := ValidateContentType(tc.contentType)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ValidateContentType(%q) error = %v, wantErr %v", tc.contentType, err, tc.wantErr)
		}
		if err != nil && !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 100); err == nil {
		t.Fatalf("expected error for empty file")
	}
	if err := ValidateFileSize(101, 100); err == nil {
		t.Fatalf("expected error for oversized file")
	}
	if err := ValidateFileSize(100, 100); err != nil {
		t.Fatalf("expected file at the limit to pass, got %v", err)
	}
	if err := ValidateFileSize(1<<40, 0); err != nil {
		t.Fatalf("expected no limit when max is unset, got %v", err)
	}
}
