package wizard

import (
	"errors"
	"testing"

	"github.com/mmynk/splitbill/internal/models"
)

func testBill() models.Bill {
	return models.Bill{
		Items: []models.Item{
			{ID: "1", Name: "Pizza", Quantity: 1, Price: 100, AssignedTo: []string{"a", "b"}},
		},
		Subtotal: 100,
		Tax:      10,
		Total:    110,
	}
}

func testPeople() []models.Participant {
	return []models.Participant{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}
}

// advance walks a fresh session to the given step.
func advance(t *testing.T, to Step) *Session {
	t.Helper()
	s := NewSession()
	if to == StepUpload {
		return s
	}
	if err := s.LoadReceipt(testBill(), "receipt.jpg"); err != nil {
		t.Fatalf("LoadReceipt() error = %v", err)
	}
	if to == StepEdit {
		return s
	}
	if err := s.Fire(EventItemsConfirmed); err != nil {
		t.Fatalf("Fire(ItemsConfirmed) error = %v", err)
	}
	if to == StepPeople {
		return s
	}
	if err := s.SetPeople(testPeople()); err != nil {
		t.Fatalf("SetPeople() error = %v", err)
	}
	if err := s.Fire(EventPeopleConfirmed); err != nil {
		t.Fatalf("Fire(PeopleConfirmed) error = %v", err)
	}
	if to == StepAssign {
		return s
	}
	if err := s.Fire(EventAssignmentsConfirmed); err != nil {
		t.Fatalf("Fire(AssignmentsConfirmed) error = %v", err)
	}
	return s
}

func TestSession_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Step
		event   Event
		want    Step
		wantErr error
	}{
		{"items confirmed", StepEdit, EventItemsConfirmed, StepPeople, nil},
		{"people confirmed without participants", StepPeople, EventPeopleConfirmed, StepPeople, ErrNoPeople},
		{"assignments confirmed", StepAssign, EventAssignmentsConfirmed, StepSummary, nil},
		{"back from edit", StepEdit, EventBack, StepUpload, nil},
		{"back from people", StepPeople, EventBack, StepEdit, nil},
		{"back from assign", StepAssign, EventBack, StepPeople, nil},
		{"back from summary", StepSummary, EventBack, StepAssign, nil},
		{"back from upload", StepUpload, EventBack, StepUpload, ErrInvalidTransition},
		{"skip ahead", StepEdit, EventAssignmentsConfirmed, StepEdit, ErrInvalidTransition},
		{"confirm items without bill", StepUpload, EventItemsConfirmed, StepUpload, ErrInvalidTransition},
		{"parse twice", StepSummary, EventReceiptParsed, StepSummary, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := advance(t, tt.from)
			err := s.Fire(tt.event)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire(%s) error = %v, want %v", tt.event, err, tt.wantErr)
				}
				if s.Step() != tt.from {
					t.Errorf("step = %s after failed transition, want %s", s.Step(), tt.from)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire(%s) error = %v", tt.event, err)
			}
			if s.Step() != tt.want {
				t.Errorf("step = %s, want %s", s.Step(), tt.want)
			}
		})
	}
}

func TestSession_StartOverClearsState(t *testing.T) {
	for _, from := range []Step{StepUpload, StepEdit, StepPeople, StepAssign, StepSummary} {
		t.Run(from.String(), func(t *testing.T) {
			s := advance(t, from)
			s.SetPaymentMethods([]models.PaymentMethod{{ID: "1", Type: models.PaymentTypeBank, Name: "bca", Number: "1"}})

			if err := s.Fire(EventStartOver); err != nil {
				t.Fatalf("Fire(StartOver) error = %v", err)
			}
			if s.Step() != StepUpload {
				t.Errorf("step = %s, want upload", s.Step())
			}
			if _, ok := s.Bill(); ok {
				t.Error("bill still present after start over")
			}
			if len(s.People()) != 0 || len(s.PaymentMethods()) != 0 || s.ImageRef() != "" {
				t.Errorf("session not cleared: people=%v methods=%v image=%q", s.People(), s.PaymentMethods(), s.ImageRef())
			}
		})
	}
}

func TestSession_SetPeopleOnlyAtPeopleStep(t *testing.T) {
	s := advance(t, StepEdit)
	if err := s.SetPeople(testPeople()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SetPeople() error = %v, want ErrInvalidTransition", err)
	}
}

func TestSession_LoadReceiptOutsideUpload(t *testing.T) {
	s := advance(t, StepEdit)
	if err := s.LoadReceipt(models.Bill{}, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("LoadReceipt() error = %v, want ErrInvalidTransition", err)
	}
	b, _ := s.Bill()
	if len(b.Items) != 1 {
		t.Errorf("bill replaced by failed LoadReceipt: %+v", b)
	}
}

func TestSession_Summaries(t *testing.T) {
	s := advance(t, StepSummary)
	summaries := s.Summaries()
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	for _, ps := range summaries {
		if ps.FinalTotal != 55 {
			t.Errorf("%s final = %v, want 55", ps.Participant.Name, ps.FinalTotal)
		}
	}

	if got := NewSession().Summaries(); got == nil || len(got) != 0 {
		t.Errorf("Summaries() on empty session = %v, want empty slice", got)
	}
}

func TestSession_BillIsCopied(t *testing.T) {
	s := advance(t, StepEdit)
	b, _ := s.Bill()
	b.Items[0].Name = "changed"

	again, _ := s.Bill()
	if again.Items[0].Name != "Pizza" {
		t.Errorf("Bill() exposed internal state: name = %q", again.Items[0].Name)
	}
}
