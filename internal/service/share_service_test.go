package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/splitbill/internal/auth"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/share"
	"github.com/mmynk/splitbill/internal/storage/sqlite"
)

// setupShareServer creates a test server with a temporary SQLite database.
func setupShareServer(t *testing.T, opts ...ShareOption) (*httptest.Server, *ShareService) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitbill-share-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	store, err := sqlite.New(filepath.Join(tempDir, "shares.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create store: %v", err)
	}

	svc := NewShareService(store, auth.NewShareGuard("test-secret", time.Hour), opts...)
	mux := http.NewServeMux()
	svc.Register(mux)
	mux.Handle("GET /healthz", HealthHandler(store))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.RemoveAll(tempDir)
	})
	return server, svc
}

func testSnapshot(t *testing.T) share.Snapshot {
	t.Helper()
	snap, err := share.NewSnapshot(
		models.Bill{
			Items:    []models.Item{{ID: "1", Name: "Martabak", Quantity: 1, Price: 40000, AssignedTo: []string{"a"}}},
			Subtotal: 40000,
			Total:    40000,
		},
		[]models.Participant{{ID: "a", Name: "Alice", Color: "#3B82F6"}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return snap
}

func TestShareService_Lifecycle(t *testing.T) {
	server, _ := setupShareServer(t, WithPublicURL("https://split.example"))
	client := share.NewClient(server.URL, nil)
	ctx := context.Background()

	snap := testSnapshot(t)
	created, err := client.Create(ctx, share.CreateRequest{BillData: snap.BillData, People: snap.People})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" || created.EditToken == "" {
		t.Fatalf("expected id and edit token, got %+v", created)
	}
	if created.URL != "https://split.example/summary?id="+created.ID {
		t.Errorf("unexpected URL %q", created.URL)
	}

	got, err := client.Get(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.PaymentMethods) != "[]" {
		t.Errorf("expected paymentMethods to default to [], got %s", got.PaymentMethods)
	}
	bill, people, _, err := got.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if bill.Items[0].Name != "Martabak" || people[0].Name != "Alice" {
		t.Errorf("unexpected snapshot: %+v %+v", bill, people)
	}

	updated := testSnapshot(t)
	updated.PaymentMethods = json.RawMessage(`[{"id":"1","type":"bank","name":"bca","number":"123"}]`)
	if err := client.Update(ctx, created.ID, "wrong-token", updated); !errors.Is(err, share.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized with bad token, got %v", err)
	}
	if err := client.Update(ctx, created.ID, created.EditToken, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err = client.Get(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if string(got.PaymentMethods) != string(updated.PaymentMethods) {
		t.Errorf("expected updated payment methods, got %s", got.PaymentMethods)
	}

	if err := client.Delete(ctx, created.ID, ""); !errors.Is(err, share.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized without token, got %v", err)
	}
	if err := client.Delete(ctx, created.ID, created.EditToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := client.Get(ctx, created.ID, ""); !errors.Is(err, share.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestShareService_TokenBoundToShare(t *testing.T) {
	server, _ := setupShareServer(t)
	client := share.NewClient(server.URL, nil)
	ctx := context.Background()
	snap := testSnapshot(t)

	first, err := client.Create(ctx, share.CreateRequest{BillData: snap.BillData, People: snap.People})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := client.Create(ctx, share.CreateRequest{BillData: snap.BillData, People: snap.People})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := client.Delete(ctx, second.ID, first.EditToken); !errors.Is(err, share.ErrUnauthorized) {
		t.Errorf("expected token of another share to be rejected, got %v", err)
	}
}

func TestShareService_Passcode(t *testing.T) {
	server, _ := setupShareServer(t)
	client := share.NewClient(server.URL, nil)
	ctx := context.Background()
	snap := testSnapshot(t)

	_, err := client.Create(ctx, share.CreateRequest{BillData: snap.BillData, People: snap.People, Passcode: "12"})
	if !errors.Is(err, share.ErrInvalidPayload) {
		t.Errorf("expected weak passcode to be rejected, got %v", err)
	}

	created, err := client.Create(ctx, share.CreateRequest{BillData: snap.BillData, People: snap.People, Passcode: "1234"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := client.Get(ctx, created.ID, ""); !errors.Is(err, share.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized without passcode, got %v", err)
	}
	if _, err := client.Get(ctx, created.ID, "0000"); !errors.Is(err, share.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized with wrong passcode, got %v", err)
	}
	if _, err := client.Get(ctx, created.ID, "1234"); err != nil {
		t.Errorf("expected Get with passcode to succeed, got %v", err)
	}
}

func TestShareService_Expiry(t *testing.T) {
	server, svc := setupShareServer(t, WithShareTTL(time.Hour))
	client := share.NewClient(server.URL, nil)
	ctx := context.Background()
	snap := testSnapshot(t)

	// Create the share as if it were made two hours ago.
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	created, err := client.Create(ctx, share.CreateRequest{BillData: snap.BillData, People: snap.People})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ExpiresAt == 0 {
		t.Fatal("expected expiresAt to be set")
	}

	if _, err := client.Get(ctx, created.ID, ""); !errors.Is(err, share.ErrNotFound) {
		t.Errorf("expected expired share to be not found, got %v", err)
	}
}

func TestShareService_InvalidRequests(t *testing.T) {
	server, _ := setupShareServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing billData", `{"people": []}`},
		{"null people", `{"billData": {}, "people": null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/api/share", "application/json", bytes.NewBufferString(tt.body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}

	resp, err := http.Get(server.URL + "/api/share/does-not-exist")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestShareService_OpaquePayload(t *testing.T) {
	server, _ := setupShareServer(t)

	body := `{"billData":{"custom":true,"items":[]},"people":["not","validated"]}`
	resp, err := http.Post(server.URL+"/api/share", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created share.CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	got, err := share.NewClient(server.URL, nil).Get(context.Background(), created.ID, "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.BillData) != `{"custom":true,"items":[]}` || string(got.People) != `["not","validated"]` {
		t.Errorf("payload not returned verbatim: %s %s", got.BillData, got.People)
	}
}

func TestHealthHandler(t *testing.T) {
	server, _ := setupShareServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
