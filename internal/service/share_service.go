package service

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmynk/splitbill/internal/auth"
	"github.com/mmynk/splitbill/internal/metrics"
	"github.com/mmynk/splitbill/internal/middleware"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/share"
	"github.com/mmynk/splitbill/internal/storage"
)

// ShareService serves the share API on top of a storage.Store.
type ShareService struct {
	store     storage.Store
	authn     auth.ShareAuthenticator
	ttl       time.Duration
	publicURL string
	metrics   *metrics.Metrics
	now       func() time.Time
}

// ShareOption configures a ShareService.
type ShareOption func(*ShareService)

// WithShareTTL sets how long shares live. Zero keeps them forever.
func WithShareTTL(ttl time.Duration) ShareOption {
	return func(s *ShareService) { s.ttl = ttl }
}

// WithPublicURL sets the origin used to build viewer links.
func WithPublicURL(url string) ShareOption {
	return func(s *ShareService) { s.publicURL = url }
}

// WithShareMetrics records share operations on m.
func WithShareMetrics(m *metrics.Metrics) ShareOption {
	return func(s *ShareService) { s.metrics = m }
}

// NewShareService creates a new ShareService with the given storage backend.
func NewShareService(store storage.Store, authn auth.ShareAuthenticator, opts ...ShareOption) *ShareService {
	s := &ShareService{store: store, authn: authn, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register mounts the share routes on mux.
func (s *ShareService) Register(mux *http.ServeMux) {
	requireEdit := middleware.RequireEditToken(s.authn)

	mux.HandleFunc("POST /api/share", s.create)
	mux.HandleFunc("GET /api/share/{id}", s.get)
	mux.Handle("PUT /api/share/{id}", requireEdit(http.HandlerFunc(s.update)))
	mux.Handle("DELETE /api/share/{id}", requireEdit(http.HandlerFunc(s.delete)))
}

func (s *ShareService) create(w http.ResponseWriter, r *http.Request) {
	var req share.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.metrics.Share("create", "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := req.Snapshot()
	if err := snap.Validate(); err != nil {
		s.metrics.Share("create", "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record := &models.Share{
		BillData:       snap.BillData,
		People:         snap.People,
		PaymentMethods: snap.PaymentMethods,
	}
	if s.ttl > 0 {
		record.ExpiresAt = s.now().Add(s.ttl).Unix()
	}
	if req.Passcode != "" {
		hash, err := s.authn.ProtectPasscode(req.Passcode)
		if err != nil {
			s.metrics.Share("create", "invalid")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		record.PasscodeHash = hash
	}

	if err := s.store.CreateShare(r.Context(), record); err != nil {
		slog.Error("Failed to create share", "error", err)
		s.metrics.Share("create", "error")
		writeError(w, http.StatusInternalServerError, "failed to create share")
		return
	}

	token, err := s.authn.IssueEditToken(record.ID)
	if err != nil {
		slog.Error("Failed to issue edit token", "share_id", record.ID, "error", err)
		s.metrics.Share("create", "error")
		writeError(w, http.StatusInternalServerError, "failed to create share")
		return
	}

	resp := share.CreateResponse{ID: record.ID, EditToken: token, ExpiresAt: record.ExpiresAt}
	if s.publicURL != "" {
		resp.URL = share.Link(s.publicURL, record.ID)
	}

	slog.Info("Share created", "share_id", record.ID, "protected", record.PasscodeHash != "")
	s.metrics.Share("create", "ok")
	writeJSON(w, http.StatusCreated, resp)
}

func (s *ShareService) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.store.GetShare(r.Context(), id)
	if err != nil {
		s.storeError(w, "get", id, err)
		return
	}

	if record.PasscodeHash != "" {
		if err := s.authn.VerifyPasscode(record.PasscodeHash, r.Header.Get(share.PasscodeHeader)); err != nil {
			slog.Warn("Share passcode rejected", "share_id", id)
			s.metrics.Share("get", "unauthorized")
			writeError(w, http.StatusUnauthorized, "passcode required")
			return
		}
	}

	snap := share.Snapshot{
		BillData:       record.BillData,
		People:         record.People,
		PaymentMethods: record.PaymentMethods,
	}.WithDefaults()

	s.metrics.Share("get", "ok")
	writeJSON(w, http.StatusOK, snap)
}

func (s *ShareService) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var snap share.Snapshot
	if err := decodeJSON(w, r, &snap); err != nil {
		s.metrics.Share("update", "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := snap.Validate(); err != nil {
		s.metrics.Share("update", "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record := &models.Share{
		ID:             id,
		BillData:       snap.BillData,
		People:         snap.People,
		PaymentMethods: snap.PaymentMethods,
	}
	if err := s.store.UpdateShare(r.Context(), record); err != nil {
		s.storeError(w, "update", id, err)
		return
	}

	slog.Info("Share updated", "share_id", id)
	s.metrics.Share("update", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (s *ShareService) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeleteShare(r.Context(), id); err != nil {
		s.storeError(w, "delete", id, err)
		return
	}

	slog.Info("Share deleted", "share_id", id)
	s.metrics.Share("delete", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (s *ShareService) storeError(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.Share(op, "not_found")
		writeError(w, http.StatusNotFound, "share not found")
		return
	}
	slog.Error("Share store failed", "op", op, "share_id", id, "error", err)
	s.metrics.Share(op, "error")
	writeError(w, http.StatusInternalServerError, "share storage failed")
}
