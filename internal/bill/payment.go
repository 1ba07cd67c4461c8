package bill

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitbill/internal/models"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validatorInst
}

// paymentLabels maps provider keys to display names.
var paymentLabels = map[string]string{
	"gopay":     "GoPay",
	"ovo":       "OVO",
	"dana":      "DANA",
	"shopeepay": "ShopeePay",
	"linkaja":   "LinkAja",
	"jenius":    "Jenius",
	"bca":       "BCA",
	"mandiri":   "Bank Mandiri",
	"bni":       "BNI",
	"bri":       "BRI",
	"cimb":      "CIMB Niaga",
	"permata":   "Bank Permata",
	"danamon":   "Bank Danamon",
	"maybank":   "Maybank",
	"linebank":  "Line Bank",
	"bankjago":  "Bank Jago",
}

// PaymentMethodLabel returns the display name for a provider key, or the key
// itself when it is not a known provider.
func PaymentMethodLabel(name string) string {
	if label, ok := paymentLabels[name]; ok {
		return label
	}
	return name
}

// ValidatePaymentMethod checks the type is ewallet or bank and that name and
// number are present.
func ValidatePaymentMethod(m models.PaymentMethod) error {
	return validate().Struct(m)
}

// AddPaymentMethod validates the method and appends it.
func AddPaymentMethod(methods []models.PaymentMethod, m models.PaymentMethod) ([]models.PaymentMethod, error) {
	if err := ValidatePaymentMethod(m); err != nil {
		return methods, err
	}

	out := make([]models.PaymentMethod, 0, len(methods)+1)
	out = append(out, methods...)
	return append(out, m), nil
}

// RemovePaymentMethod drops the method with the given ID.
func RemovePaymentMethod(methods []models.PaymentMethod, id string) []models.PaymentMethod {
	out := make([]models.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}
