package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitbill/internal/bill"
	"github.com/mmynk/splitbill/internal/models"
)

// billFile is the on-disk form of a split.
type billFile struct {
	Bill           models.Bill            `yaml:"bill"`
	People         []models.Participant   `yaml:"people"`
	PaymentMethods []models.PaymentMethod `yaml:"paymentMethods,omitempty"`
}

func loadBillFile(path string) (*billFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bill file: %w", err)
	}
	return parseBillFile(data)
}

// parseBillFile decodes a bill file and fills in what a hand-written file
// usually leaves out: item and person IDs, colors and the totals.
func parseBillFile(data []byte) (*billFile, error) {
	var f billFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse bill file: %w", err)
	}

	for i := range f.Bill.Items {
		item := &f.Bill.Items[i]
		if item.ID == "" {
			item.ID = fmt.Sprintf("%d", i+1)
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.AssignedTo == nil {
			item.AssignedTo = []string{}
		}
	}
	if f.Bill.Subtotal == 0 && f.Bill.Total == 0 {
		f.Bill = bill.Recalculate(f.Bill)
	}

	var people []models.Participant
	for _, p := range f.People {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		var err error
		people, err = bill.AddPerson(people, id, p.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid person %q: %w", p.Name, err)
		}
		if p.Color != "" {
			people[len(people)-1].Color = p.Color
		}
	}
	f.People = people

	var methods []models.PaymentMethod
	for _, m := range f.PaymentMethods {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		var err error
		methods, err = bill.AddPaymentMethod(methods, m)
		if err != nil {
			return nil, fmt.Errorf("invalid payment method %q: %w", m.Name, err)
		}
	}
	f.PaymentMethods = methods

	return &f, nil
}
