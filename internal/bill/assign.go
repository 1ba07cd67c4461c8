package bill

import (
	"github.com/mmynk/splitbill/internal/models"
)

// ToggleAssignment adds the participant to the item, or removes them if they
// were already assigned.
func ToggleAssignment(b models.Bill, itemID, participantID string) (models.Bill, error) {
	out := b.Clone()
	idx := indexOf(out.Items, itemID)
	if idx < 0 {
		return b, ErrItemNotFound
	}

	item := &out.Items[idx]
	if item.IsAssignedTo(participantID) {
		item.AssignedTo = without(item.AssignedTo, participantID)
	} else {
		item.AssignedTo = append(item.AssignedTo, participantID)
	}
	return out, nil
}

// AssignToAll assigns the item to every participant, replacing any existing
// assignment.
func AssignToAll(b models.Bill, itemID string, people []models.Participant) (models.Bill, error) {
	out := b.Clone()
	idx := indexOf(out.Items, itemID)
	if idx < 0 {
		return b, ErrItemNotFound
	}

	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	out.Items[idx].AssignedTo = ids
	return out, nil
}

// ClearAssignments leaves the item unassigned.
func ClearAssignments(b models.Bill, itemID string) (models.Bill, error) {
	out := b.Clone()
	idx := indexOf(out.Items, itemID)
	if idx < 0 {
		return b, ErrItemNotFound
	}
	out.Items[idx].AssignedTo = []string{}
	return out, nil
}

// UnassignedItems lists the items nobody is splitting.
func UnassignedItems(b models.Bill) []models.Item {
	var items []models.Item
	for _, item := range b.Items {
		if !item.Assigned() {
			items = append(items, item.Clone())
		}
	}
	return items
}

// AllAssigned reports whether every item has at least one assignee.
func AllAssigned(b models.Bill) bool {
	for _, item := range b.Items {
		if !item.Assigned() {
			return false
		}
	}
	return true
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
