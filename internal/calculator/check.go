package calculator

import (
	"math"

	"github.com/mmynk/splitbill/internal/models"
)

// Tolerance is the largest difference between the bill total and the sum of
// final totals that still counts as balanced.
const Tolerance = 0.01

// Reconciliation compares the allocated amounts against the bill total.
type Reconciliation struct {
	// BillTotal is the total printed on the bill.
	BillTotal float64 `json:"billTotal"`

	// TotalCheck is the sum of every participant's final total.
	TotalCheck float64 `json:"totalCheck"`

	// Difference is TotalCheck - BillTotal.
	Difference float64 `json:"difference"`

	// Balanced is true when |Difference| <= Tolerance.
	Balanced bool `json:"balanced"`
}

// Check sums the final totals and compares them with the bill total.
// With no participants nothing is allocated, so only a zero total balances.
func Check(bill models.Bill, summaries []models.PersonSummary) Reconciliation {
	var sum float64
	for _, s := range summaries {
		sum += s.FinalTotal
	}

	diff := sum - bill.Total
	return Reconciliation{
		BillTotal:  bill.Total,
		TotalCheck: sum,
		Difference: diff,
		Balanced:   math.Abs(diff) <= Tolerance,
	}
}
