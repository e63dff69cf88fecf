package validate_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/validate"
)

type model struct {
	From   string `json:"from" validate:"required"`
	Amount uint64 `json:"amount" validate:"gte=1"`
}

func TestCheck(t *testing.T) {
	if err := validate.Check(model{From: "bill", Amount: 1}); err != nil {
		t.Fatalf("Should be able to validate a good model: %s", err)
	}

	err := validate.Check(model{})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should get field errors: %v", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["from"]; !exists {
		t.Fatalf("Should use the json name for the field: %v", fields)
	}

	if _, exists := fields["amount"]; !exists {
		t.Fatalf("Should report every failing field: %v", fields)
	}
}
