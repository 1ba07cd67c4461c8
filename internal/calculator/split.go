package calculator

import (
	"github.com/mmynk/splitbill/internal/models"
)

// Allocate computes how much each participant owes, including proportional
// tax, service charge and discount.
//
// Based on the algorithm:
//
//	items_total = Σ item.Cost() / len(item.AssignedTo)   (items assigned to the person)
//	proportion  = items_total / bill_subtotal            (0 when subtotal is 0)
//	final_total = items_total + (tax + service - discount) × proportion
//
// Unassigned items are pooled, charged their prorated share of tax, service
// and discount, and spread evenly over every participant. That share only
// shows up in FinalTotal.
//
// Assignee IDs that are not in participants still count toward the divisor
// but receive no summary. Summaries are returned in participant order and
// never alias the input.
func Allocate(bill models.Bill, participants []models.Participant) []models.PersonSummary {
	summaries := make([]models.PersonSummary, 0, len(participants))
	if len(participants) == 0 {
		return summaries
	}

	for _, p := range participants {
		summary := models.PersonSummary{
			Participant: p,
			Items:       []models.ItemAllocation{},
		}

		for _, item := range bill.Items {
			if !item.IsAssignedTo(p.ID) {
				continue
			}

			cost := item.Cost()
			split := cost / float64(len(item.AssignedTo))
			summary.Items = append(summary.Items, models.ItemAllocation{
				Name:       item.Name,
				Quantity:   item.Quantity,
				TotalPrice: cost,
				SplitPrice: split,
				SharedWith: len(item.AssignedTo),
			})
			summary.ItemsTotal += split
		}

		proportion := proportionOf(summary.ItemsTotal, bill.Subtotal)
		summary.TaxPortion = bill.Tax * proportion
		summary.ServicePortion = bill.ServiceCharge * proportion
		summary.DiscountPortion = bill.Discount * proportion
		summary.FinalTotal = summary.ItemsTotal + summary.TaxPortion + summary.ServicePortion - summary.DiscountPortion

		summaries = append(summaries, summary)
	}

	// Spread unassigned items evenly
	if share := UnassignedCost(bill) / float64(len(participants)); share != 0 {
		for i := range summaries {
			summaries[i].FinalTotal += share
		}
	}

	return summaries
}

// UnassignedSubtotal is the summed cost of items nobody is splitting.
func UnassignedSubtotal(bill models.Bill) float64 {
	var subtotal float64
	for _, item := range bill.Items {
		if !item.Assigned() {
			subtotal += item.Cost()
		}
	}
	return subtotal
}

// UnassignedCost is the unassigned subtotal plus its prorated tax and service
// charge, less its prorated discount. It is 0 when the bill subtotal is not
// positive.
func UnassignedCost(bill models.Bill) float64 {
	subtotal := UnassignedSubtotal(bill)
	if subtotal <= 0 || bill.Subtotal <= 0 {
		return 0
	}

	proportion := subtotal / bill.Subtotal
	tax := bill.Tax * proportion
	service := bill.ServiceCharge * proportion
	discount := bill.Discount * proportion
	return subtotal + tax + service - discount
}

func proportionOf(amount, subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	return amount / subtotal
}
