// Package bill implements the editing operations a client performs on a bill
// between parsing and splitting: correcting items, managing people, assigning
// items and recording payment methods.
//
// Every operation returns a new value and leaves its inputs untouched.
package bill

import (
	"errors"

	"github.com/mmynk/splitbill/internal/models"
)

// ErrItemNotFound is returned when an operation references an unknown item ID.
var ErrItemNotFound = errors.New("item not found")

// DefaultItemName is the name given to items added by hand.
const DefaultItemName = "New Item"

// ItemPatch holds optional field updates for an item. Nil fields are left as is.
type ItemPatch struct {
	Name     *string
	Quantity *int
	Price    *float64
	Discount *float64
}

// Subtotal is the summed cost of all items.
func Subtotal(items []models.Item) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Cost()
	}
	return subtotal
}

// Recalculate returns a copy of the bill with Subtotal derived from the items
// and Total derived from Subtotal and the bill-level charges.
func Recalculate(b models.Bill) models.Bill {
	out := b.Clone()
	out.Subtotal = Subtotal(out.Items)
	out.Total = out.Subtotal + out.Tax + out.ServiceCharge - out.Discount
	return out
}

// AddItem appends a blank item with the given ID. The totals are unchanged
// since the new item costs nothing.
func AddItem(b models.Bill, id string) models.Bill {
	out := b.Clone()
	out.Items = append(out.Items, models.Item{
		ID:         id,
		Name:       DefaultItemName,
		Quantity:   1,
		AssignedTo: []string{},
	})
	return out
}

// UpdateItem applies the patch to the item and recalculates the totals.
func UpdateItem(b models.Bill, id string, patch ItemPatch) (models.Bill, error) {
	out := b.Clone()
	idx := indexOf(out.Items, id)
	if idx < 0 {
		return b, ErrItemNotFound
	}

	item := &out.Items[idx]
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Quantity != nil {
		item.Quantity = max(*patch.Quantity, 0)
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Discount != nil {
		item.Discount = ClampDiscount(*patch.Discount)
	}

	return Recalculate(out), nil
}

// DeleteItem removes the item and recalculates the totals.
func DeleteItem(b models.Bill, id string) (models.Bill, error) {
	idx := indexOf(b.Items, id)
	if idx < 0 {
		return b, ErrItemNotFound
	}

	out := b.Clone()
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	return Recalculate(out), nil
}

// SetCharges replaces the bill-level charges and recomputes the total from
// the current subtotal.
func SetCharges(b models.Bill, tax, serviceCharge, discount float64) models.Bill {
	out := b.Clone()
	out.Tax = tax
	out.ServiceCharge = serviceCharge
	out.Discount = discount
	out.Total = out.Subtotal + out.Tax + out.ServiceCharge - out.Discount
	return out
}

// ClampDiscount limits a per-item discount percentage to [0, 100].
func ClampDiscount(pct float64) float64 {
	return min(max(pct, 0), 100)
}

func indexOf(items []models.Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
