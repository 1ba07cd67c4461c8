package bill

import (
	"testing"

	"github.com/mmynk/splitbill/internal/models"
)

func TestAddPaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  models.PaymentMethod
		wantErr bool
	}{
		{"ewallet", models.PaymentMethod{ID: "1", Type: models.PaymentTypeEWallet, Name: "gopay", Number: "0812"}, false},
		{"bank", models.PaymentMethod{ID: "2", Type: models.PaymentTypeBank, Name: "bca", Number: "123456"}, false},
		{"unknown type", models.PaymentMethod{ID: "3", Type: "cash", Name: "x", Number: "1"}, true},
		{"missing number", models.PaymentMethod{ID: "4", Type: models.PaymentTypeBank, Name: "bni"}, true},
		{"missing name", models.PaymentMethod{ID: "5", Type: models.PaymentTypeEWallet, Number: "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddPaymentMethod(nil, tt.method)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddPaymentMethod() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != 1 {
				t.Errorf("got %d methods, want 1", len(got))
			}
		})
	}
}

func TestRemovePaymentMethod(t *testing.T) {
	methods := []models.PaymentMethod{{ID: "1"}, {ID: "2"}}
	got := RemovePaymentMethod(methods, "1")
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("RemovePaymentMethod() = %+v, want only 2", got)
	}
}

func TestPaymentMethodLabel(t *testing.T) {
	if got := PaymentMethodLabel("mandiri"); got != "Bank Mandiri" {
		t.Errorf("PaymentMethodLabel(mandiri) = %q", got)
	}
	if got := PaymentMethodLabel("Koperasi"); got != "Koperasi" {
		t.Errorf("PaymentMethodLabel(Koperasi) = %q, want passthrough", got)
	}
}
