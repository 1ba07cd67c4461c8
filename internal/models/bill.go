package models

// Bill represents a receipt with items to be split among participants.
// It holds the aggregate charges exactly as parsed or edited; the relationships
// between them are advisory and never enforced:
//
//	Subtotal ≈ Σ item.Cost()
//	Total    ≈ Subtotal + Tax + ServiceCharge - Discount
type Bill struct {
	// Items are the individual line items on the receipt.
	Items []Item `json:"items" yaml:"items"`

	// Subtotal is the sum of item costs before charges.
	Subtotal float64 `json:"subtotal" yaml:"subtotal"`

	// Tax is the total tax amount on the receipt.
	Tax float64 `json:"tax" yaml:"tax"`

	// ServiceCharge is the total service charge on the receipt.
	ServiceCharge float64 `json:"serviceCharge" yaml:"serviceCharge"`

	// Discount is a bill-level discount amount (not a percentage).
	Discount float64 `json:"discount" yaml:"discount"`

	// Total is the final amount on the receipt.
	Total float64 `json:"total" yaml:"total"`
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	out := b
	if b.Items != nil {
		out.Items = make([]Item, len(b.Items))
		for i, item := range b.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Item represents a single line item on a bill.
// Items can be shared among multiple participants.
type Item struct {
	// ID is unique within the bill.
	ID string `json:"id" yaml:"id"`

	// Name is the item description (e.g., "Nasi Goreng", "Es Teh").
	Name string `json:"name" yaml:"name"`

	// Quantity is the number of units ordered.
	Quantity int `json:"quantity" yaml:"quantity"`

	// Price is the unit price.
	Price float64 `json:"price" yaml:"price"`

	// Discount is an optional per-item discount percentage (0-100).
	Discount float64 `json:"discount,omitempty" yaml:"discount,omitempty"`

	// AssignedTo holds the participant IDs splitting this item.
	// An empty list means the item is unassigned.
	AssignedTo []string `json:"assignedTo" yaml:"assignedTo"`
}

// Cost is the item's total monetary value: unit price times quantity, less
// the per-item discount percentage.
func (i Item) Cost() float64 {
	cost := i.Price * float64(i.Quantity)
	if i.Discount > 0 {
		cost *= 1 - i.Discount/100
	}
	return cost
}

// Assigned reports whether at least one participant is splitting the item.
func (i Item) Assigned() bool {
	return len(i.AssignedTo) > 0
}

// IsAssignedTo reports whether the participant is splitting the item.
func (i Item) IsAssignedTo(participantID string) bool {
	for _, id := range i.AssignedTo {
		if id == participantID {
			return true
		}
	}
	return false
}

// Clone returns a copy of the item that shares no memory with the original.
func (i Item) Clone() Item {
	out := i
	if i.AssignedTo != nil {
		out.AssignedTo = append([]string(nil), i.AssignedTo...)
	}
	return out
}
