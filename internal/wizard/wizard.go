// Package wizard models the bill-splitting flow as an explicit state machine.
//
// A Session moves through Upload → Edit → People → Assign → Summary. Each
// step has exactly one forward event and a Back event; StartOver returns to
// Upload from anywhere and clears the session.
package wizard

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/models"
)

// Step is a wizard state.
type Step int

const (
	StepUpload Step = iota
	StepEdit
	StepPeople
	StepAssign
	StepSummary
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepEdit:
		return "edit"
	case StepPeople:
		return "people"
	case StepAssign:
		return "assign"
	case StepSummary:
		return "summary"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Event drives a transition between steps.
type Event int

const (
	EventReceiptParsed Event = iota
	EventItemsConfirmed
	EventPeopleConfirmed
	EventAssignmentsConfirmed
	EventBack
	EventStartOver
)

func (e Event) String() string {
	switch e {
	case EventReceiptParsed:
		return "receipt_parsed"
	case EventItemsConfirmed:
		return "items_confirmed"
	case EventPeopleConfirmed:
		return "people_confirmed"
	case EventAssignmentsConfirmed:
		return "assignments_confirmed"
	case EventBack:
		return "back"
	case EventStartOver:
		return "start_over"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

var (
	// ErrInvalidTransition is returned when an event is not accepted in the
	// current step.
	ErrInvalidTransition = errors.New("invalid transition")

	ErrNoBill   = errors.New("no bill loaded")
	ErrNoPeople = errors.New("at least one participant is required")
)

type transitionKey struct {
	from  Step
	event Event
}

// StartOver is handled separately since it is accepted everywhere.
var transitions = map[transitionKey]Step{
	{StepUpload, EventReceiptParsed}:        StepEdit,
	{StepEdit, EventItemsConfirmed}:         StepPeople,
	{StepPeople, EventPeopleConfirmed}:      StepAssign,
	{StepAssign, EventAssignmentsConfirmed}: StepSummary,

	{StepEdit, EventBack}:    StepUpload,
	{StepPeople, EventBack}:  StepEdit,
	{StepAssign, EventBack}:  StepPeople,
	{StepSummary, EventBack}: StepAssign,
}

// Session holds the state of one bill-splitting flow.
// A Session is not safe for concurrent use.
type Session struct {
	step           Step
	bill           *models.Bill
	people         []models.Participant
	paymentMethods []models.PaymentMethod
	imageRef       string
}

// NewSession returns a session at the upload step.
func NewSession() *Session {
	return &Session{step: StepUpload}
}

// Step returns the current step.
func (s *Session) Step() Step {
	return s.step
}

// Fire applies the event. The session is unchanged when an error is returned.
func (s *Session) Fire(event Event) error {
	if event == EventStartOver {
		s.reset()
		return nil
	}

	next, ok := transitions[transitionKey{s.step, event}]
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, s.step)
	}
	if err := s.guard(event); err != nil {
		return err
	}

	s.step = next
	return nil
}

func (s *Session) guard(event Event) error {
	switch event {
	case EventReceiptParsed, EventItemsConfirmed:
		if s.bill == nil {
			return ErrNoBill
		}
	case EventPeopleConfirmed:
		if len(s.people) == 0 {
			return ErrNoPeople
		}
	}
	return nil
}

// LoadReceipt stores the parsed bill and moves to the edit step.
func (s *Session) LoadReceipt(b models.Bill, imageRef string) error {
	if s.step != StepUpload {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, EventReceiptParsed, s.step)
	}
	prevBill, prevRef := s.bill, s.imageRef

	bc := b.Clone()
	s.bill = &bc
	s.imageRef = imageRef
	if err := s.Fire(EventReceiptParsed); err != nil {
		s.bill, s.imageRef = prevBill, prevRef
		return err
	}
	return nil
}

// Reset clears the session and returns to the upload step.
func (s *Session) Reset() {
	s.reset()
}

func (s *Session) reset() {
	*s = Session{step: StepUpload}
}

// Bill returns a copy of the current bill.
func (s *Session) Bill() (models.Bill, bool) {
	if s.bill == nil {
		return models.Bill{}, false
	}
	return s.bill.Clone(), true
}

// SetBill replaces the bill. It is accepted while editing items or assigning
// them.
func (s *Session) SetBill(b models.Bill) error {
	if s.step != StepEdit && s.step != StepAssign {
		return fmt.Errorf("%w: cannot edit bill in %s", ErrInvalidTransition, s.step)
	}
	bc := b.Clone()
	s.bill = &bc
	return nil
}

// People returns a copy of the participant list.
func (s *Session) People() []models.Participant {
	return append([]models.Participant(nil), s.people...)
}

// SetPeople replaces the participant list. It is only accepted at the people
// step.
func (s *Session) SetPeople(people []models.Participant) error {
	if s.step != StepPeople {
		return fmt.Errorf("%w: cannot edit people in %s", ErrInvalidTransition, s.step)
	}
	s.people = append([]models.Participant(nil), people...)
	return nil
}

// PaymentMethods returns a copy of the recorded payment methods.
func (s *Session) PaymentMethods() []models.PaymentMethod {
	return append([]models.PaymentMethod(nil), s.paymentMethods...)
}

// SetPaymentMethods replaces the payment methods shown with the summary.
func (s *Session) SetPaymentMethods(methods []models.PaymentMethod) {
	s.paymentMethods = append([]models.PaymentMethod(nil), methods...)
}

// ImageRef returns the reference of the uploaded receipt image, if any.
func (s *Session) ImageRef() string {
	return s.imageRef
}

// Summaries runs the allocation over the current bill and participants.
func (s *Session) Summaries() []models.PersonSummary {
	if s.bill == nil {
		return []models.PersonSummary{}
	}
	return calculator.Allocate(*s.bill, s.people)
}
