package validator

import (
	"errors"
	"testing"
)

type sample struct {
	Price float64 `validate:"gt=0"`
	Days  int     `validate:"min=0"`
}

func TestDetailsReportsFailedFields(t *testing.T) {
	val := New()

	err := val.Struct(sample{Price: 0, Days: -1})
	if err == nil {
		t.Fatalf("expected validation error")
	}

	details := Details(err)
	if details["Price"] != "gt" {
		t.Fatalf("expected Price to fail gt, got %q", details["Price"])
	}
	if details["Days"] != "min" {
		t.Fatalf("expected Days to fail min, got %q", details["Days"])
	}
}

func TestDetailsIgnoresOtherErrors(t *testing.T) {
	if got := Details(errors.New("boom")); got != nil {
		t.Fatalf("expected nil details, got %#v", got)
	}
}
