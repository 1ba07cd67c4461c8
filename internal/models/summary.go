package models

// ItemAllocation is one participant's share of a single item.
type ItemAllocation struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`

	// TotalPrice is the full cost of the item before splitting.
	TotalPrice float64 `json:"totalPrice"`

	// SplitPrice is this participant's share of TotalPrice.
	SplitPrice float64 `json:"splitPrice"`

	// SharedWith is the number of participants splitting the item,
	// including this one.
	SharedWith int `json:"sharedWith"`
}

// PersonSummary represents one participant's calculated share of a bill.
// This is the output of the allocation engine and is never persisted.
type PersonSummary struct {
	Participant Participant      `json:"person"`
	Items       []ItemAllocation `json:"items"`

	// ItemsTotal is the sum of SplitPrice over Items.
	ItemsTotal float64 `json:"itemsTotal"`

	// TaxPortion, ServicePortion and DiscountPortion are the bill-level
	// charges prorated by ItemsTotal / Subtotal.
	TaxPortion      float64 `json:"taxPortion"`
	ServicePortion  float64 `json:"servicePortion"`
	DiscountPortion float64 `json:"discountPortion"`

	// FinalTotal is what the participant owes. It also includes an even share
	// of unassigned items, which is not reflected in the portions above.
	FinalTotal float64 `json:"finalTotal"`
}
