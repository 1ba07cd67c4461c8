package bill

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mmynk/splitbill/internal/models"
)

var (
	ErrEmptyName          = errors.New("name must not be empty")
	ErrParticipantMissing = errors.New("participant not found")
)

// Palette holds the display colors handed out to participants in order.
var Palette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#EC4899", "#06B6D4", "#84CC16", "#F97316", "#6366F1",
}

// ColorFor returns the palette color for the participant at position i.
func ColorFor(i int) string {
	return Palette[i%len(Palette)]
}

// AddPerson appends a participant with a trimmed name and the next palette color.
func AddPerson(people []models.Participant, id, name string) ([]models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return people, ErrEmptyName
	}

	p := models.Participant{ID: id, Name: name, Color: ColorFor(len(people))}
	if err := validate().Struct(p); err != nil {
		return people, err
	}

	out := make([]models.Participant, 0, len(people)+1)
	out = append(out, people...)
	return append(out, p), nil
}

// RenamePerson changes a participant's display name.
func RenamePerson(people []models.Participant, id, name string) ([]models.Participant, error) {
	idx := personIndex(people, id)
	if idx < 0 {
		return people, ErrParticipantMissing
	}

	out := append([]models.Participant(nil), people...)
	out[idx].Name = name
	return out, nil
}

// RemovePerson drops the participant and strips their ID from every item
// assignment.
func RemovePerson(people []models.Participant, b models.Bill, id string) ([]models.Participant, models.Bill) {
	out := make([]models.Participant, 0, len(people))
	for _, p := range people {
		if p.ID != id {
			out = append(out, p)
		}
	}

	nb := b.Clone()
	for i := range nb.Items {
		nb.Items[i].AssignedTo = without(nb.Items[i].AssignedTo, id)
	}
	return out, nb
}

// QuickNames are the names used by QuickPeople.
var QuickNames = []string{"Me", "Friend 1", "Friend 2", "Friend 3"}

// QuickPeople builds a starter participant list. IDs are derived from base so
// that they are unique within the session.
func QuickPeople(base string) []models.Participant {
	people := make([]models.Participant, len(QuickNames))
	for i, name := range QuickNames {
		people[i] = models.Participant{
			ID:    base + "-" + strconv.Itoa(i),
			Name:  name,
			Color: ColorFor(i),
		}
	}
	return people
}

func personIndex(people []models.Participant, id string) int {
	for i, p := range people {
		if p.ID == id {
			return i
		}
	}
	return -1
}
