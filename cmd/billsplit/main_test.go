package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/splitbill/internal/auth"
	"github.com/mmynk/splitbill/internal/bill"
	"github.com/mmynk/splitbill/internal/service"
	"github.com/mmynk/splitbill/internal/storage/sqlite"
	"github.com/mmynk/splitbill/internal/wizard"
)

const dinnerYAML = `
bill:
  items:
    - name: Nasi Goreng
      quantity: 2
      price: 25000
      assignedTo: [a]
    - name: Es Teh
      quantity: 2
      price: 5000
      assignedTo: [a, b]
  tax: 6000
people:
  - id: a
    name: " Alice "
  - id: b
    name: Bob
    color: "#000000"
paymentMethods:
  - type: ewallet
    name: gopay
    number: "08123456789"
`

func writeBillFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bill.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write bill file: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseBillFile(t *testing.T) {
	f, err := parseBillFile([]byte(dinnerYAML))
	if err != nil {
		t.Fatalf("parseBillFile failed: %v", err)
	}

	if f.Bill.Subtotal != 60000 || f.Bill.Total != 66000 {
		t.Errorf("expected recalculated totals 60000/66000, got %v/%v", f.Bill.Subtotal, f.Bill.Total)
	}
	ids := []string{f.Bill.Items[0].ID, f.Bill.Items[1].ID}
	if diff := cmp.Diff([]string{"1", "2"}, ids); diff != "" {
		t.Errorf("item IDs mismatch (-want +got):\n%s", diff)
	}

	if f.People[0].Name != "Alice" || f.People[0].Color != bill.ColorFor(0) {
		t.Errorf("expected trimmed name and palette color, got %+v", f.People[0])
	}
	if f.People[1].Color != "#000000" {
		t.Errorf("expected explicit color to be kept, got %q", f.People[1].Color)
	}
	if len(f.PaymentMethods) != 1 || f.PaymentMethods[0].ID == "" {
		t.Errorf("expected payment method with generated ID, got %+v", f.PaymentMethods)
	}
}

func TestParseBillFile_KeepsExplicitTotals(t *testing.T) {
	f, err := parseBillFile([]byte(`
bill:
  items:
    - {name: Soto, price: 20000}
  subtotal: 20000
  total: 25000
people: [{name: Alice}]
`))
	if err != nil {
		t.Fatalf("parseBillFile failed: %v", err)
	}
	if f.Bill.Total != 25000 {
		t.Errorf("expected printed total to be kept, got %v", f.Bill.Total)
	}
	if f.Bill.Items[0].Quantity != 1 || f.Bill.Items[0].AssignedTo == nil {
		t.Errorf("expected item defaults, got %+v", f.Bill.Items[0])
	}
	if f.People[0].ID == "" {
		t.Error("expected generated person ID")
	}
}

func TestParseBillFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "bill: ["},
		{"empty person name", "people: [{name: \"  \"}]"},
		{"bad payment type", "paymentMethods: [{type: cash, name: x, number: \"1\"}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseBillFile([]byte(tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSplitCmd_Text(t *testing.T) {
	path := writeBillFile(t, dinnerYAML)

	out, err := execute(t, "split", "-f", path)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	for _, want := range []string{"Alice: Rp.60500.00", "Bob: Rp.5500.00", "(shared with 1 other)", "Payment Methods", "GoPay"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestSplitCmd_JSON(t *testing.T) {
	path := writeBillFile(t, dinnerYAML)

	out, err := execute(t, "split", "-f", path, "--format", "json")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	var res splitResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !res.Check.Balanced {
		t.Errorf("expected balanced split, got %+v", res.Check)
	}
	if len(res.Summaries) != 2 || math.Abs(res.Summaries[1].FinalTotal-5500) > 0.01 {
		t.Errorf("unexpected summaries: %+v", res.Summaries)
	}
}

func TestSplitCmd_Errors(t *testing.T) {
	noPeople := writeBillFile(t, "bill:\n  items: [{name: Soto, price: 20000}]\n")

	if _, err := execute(t, "split", "-f", noPeople); !errors.Is(err, wizard.ErrNoPeople) {
		t.Errorf("expected ErrNoPeople, got %v", err)
	}
	if _, err := execute(t, "split", "-f", writeBillFile(t, dinnerYAML), "--format", "xml"); err == nil {
		t.Error("expected unknown format to fail")
	}
	if _, err := execute(t, "split"); err == nil {
		t.Error("expected missing --file to fail")
	}
}

func TestSplitCmd_Remote(t *testing.T) {
	mux := http.NewServeMux()
	path, handler := service.NewAllocationServiceHandler(service.NewAllocationService(nil))
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := execute(t, "split", "-f", writeBillFile(t, dinnerYAML), "--remote", "--server", server.URL)
	if err != nil {
		t.Fatalf("remote split failed: %v", err)
	}
	if !strings.Contains(out, "Alice: Rp.60500.00") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestShareAndFetch(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "shares.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	mux := http.NewServeMux()
	service.NewShareService(store, auth.NewShareGuard("test-secret", time.Hour),
		service.WithPublicURL("https://split.example"),
	).Register(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := execute(t, "share", "-f", writeBillFile(t, dinnerYAML), "--passcode", "4321", "--server", server.URL)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	var id string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "ID:"); ok {
			id = strings.TrimSpace(rest)
		}
	}
	if id == "" {
		t.Fatalf("no share ID in output:\n%s", out)
	}
	if !strings.Contains(out, "https://split.example/summary?id="+id) {
		t.Errorf("expected share URL in output:\n%s", out)
	}

	if _, err := execute(t, "fetch", id, "--server", server.URL); err == nil {
		t.Error("expected fetch without passcode to fail")
	}

	out, err = execute(t, "fetch", id, "--passcode", "4321", "--server", server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(out, "Bob: Rp.5500.00") {
		t.Errorf("unexpected fetch output:\n%s", out)
	}
}
