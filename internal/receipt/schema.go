// Package receipt talks to the external receipt-parsing service and converts
// its loosely typed output into a bill.
package receipt

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitbill/internal/models"
)

// Number is a tolerant numeric field. It accepts a JSON number, a numeric
// string or null. Anything it cannot read decodes as 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*n = 0
		return nil
	}

	s := string(raw)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(d.InexactFloat64())
	return nil
}

// Float64 returns the value as a float64.
func (n Number) Float64() float64 {
	return float64(n)
}

// ParsedItem is one line item as returned by the parser.
type ParsedItem struct {
	Name     string `json:"name"`
	Quantity Number `json:"quantity"`
	Price    Number `json:"price"`
}

// Parsed is the structured receipt returned by the parser. ServiceCharge and
// Discount may be absent.
type Parsed struct {
	Items         []ParsedItem `json:"items"`
	Subtotal      Number       `json:"subtotal"`
	Tax           Number       `json:"tax"`
	ServiceCharge *Number      `json:"serviceCharge,omitempty"`
	Discount      *Number      `json:"discount,omitempty"`
	Total         Number       `json:"total"`
}

// Response is the envelope the parser replies with.
type Response struct {
	Parsed Parsed `json:"parsed"`
}

// Decode reads a parser response. Only structurally invalid JSON is an error.
func Decode(data []byte) (*Parsed, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp.Parsed, nil
}

// ToBill converts the parsed receipt into a bill. Items get sequential IDs
// starting at "1" and no assignees. Missing charges become 0 and quantities
// below 1 become 1.
func (p Parsed) ToBill() models.Bill {
	items := make([]models.Item, len(p.Items))
	for i, it := range p.Items {
		qty := int(math.Round(it.Quantity.Float64()))
		if qty <= 0 {
			qty = 1
		}
		items[i] = models.Item{
			ID:         strconv.Itoa(i + 1),
			Name:       it.Name,
			Quantity:   qty,
			Price:      it.Price.Float64(),
			AssignedTo: []string{},
		}
	}

	return models.Bill{
		Items:         items,
		Subtotal:      p.Subtotal.Float64(),
		Tax:           p.Tax.Float64(),
		ServiceCharge: optional(p.ServiceCharge),
		Discount:      optional(p.Discount),
		Total:         p.Total.Float64(),
	}
}

func optional(n *Number) float64 {
	if n == nil {
		return 0
	}
	return n.Float64()
}
