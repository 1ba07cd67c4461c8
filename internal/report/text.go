// Package report renders split results as plain text for sharing in chat
// apps.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mmynk/splitbill/internal/bill"
	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/models"
)

const header = "💰 Bill Split Summary"

var printer = message.NewPrinter(language.Indonesian)

// Text renders the per-person breakdown, the bill total against the summed
// shares, and the payment methods if there are any.
func Text(b models.Bill, summaries []models.PersonSummary, methods []models.PaymentMethod) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")

	for _, s := range summaries {
		fmt.Fprintf(&sb, "%s: Rp.%s\n", s.Participant.Name, Fixed(s.FinalTotal))
		for _, item := range s.Items {
			fmt.Fprintf(&sb, "  • %s: Rp.%s%s\n", item.Name, Fixed(item.SplitPrice), sharedSuffix(item.SharedWith))
		}
		fmt.Fprintf(&sb, "  Tax: %s\n", Rupiah(s.TaxPortion))
		fmt.Fprintf(&sb, "  Service: %s\n\n", Rupiah(s.ServicePortion))
	}

	check := calculator.Check(b, summaries)
	fmt.Fprintf(&sb, "Total Bill: %s\n", Rupiah(check.BillTotal))
	fmt.Fprintf(&sb, "Total Check: %s", Rupiah(check.TotalCheck))

	if len(methods) > 0 {
		sb.WriteString("\n\nPayment Methods\n")
		for _, m := range methods {
			fmt.Fprintf(&sb, "  %s (%s): %s\n", bill.PaymentMethodLabel(m.Name), m.Type, m.Number)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Fixed formats an amount with exactly two decimals, rounding half away from
// zero.
func Fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Rupiah formats an amount the Indonesian way: "Rp 12.500,00".
func Rupiah(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(whole)).Shift(2).IntPart()
	return fmt.Sprintf("%sRp %s,%02d", sign, printer.Sprintf("%d", whole), cents)
}

func sharedSuffix(sharedWith int) string {
	switch {
	case sharedWith <= 1:
		return ""
	case sharedWith == 2:
		return " (shared with 1 other)"
	default:
		return fmt.Sprintf(" (shared with %d others)", sharedWith-1)
	}
}
