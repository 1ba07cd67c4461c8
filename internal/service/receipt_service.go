package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitbill/internal/metrics"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/receipt"
)

// ReceiptParser turns a receipt image into structured data.
type ReceiptParser interface {
	Parse(ctx context.Context, image []byte, filename string) (*receipt.Parsed, error)
}

// ReceiptResponse is returned by POST /api/receipt. Parsed is the parser
// output as received; Bill is the same data with defaults applied.
type ReceiptResponse struct {
	Parsed receipt.Parsed `json:"parsed"`
	Bill   models.Bill    `json:"bill"`
}

// ReceiptHandler serves POST /api/receipt.
type ReceiptHandler struct {
	parser    ReceiptParser
	maxUpload int64
	metrics   *metrics.Metrics
}

// NewReceiptHandler creates the receipt upload handler. A nil parser makes
// every request fail with 503.
func NewReceiptHandler(parser ReceiptParser, maxUploadBytes int64, m *metrics.Metrics) *ReceiptHandler {
	return &ReceiptHandler{parser: parser, maxUpload: maxUploadBytes, metrics: m}
}

func (h *ReceiptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.parser == nil {
		h.metrics.Receipt("disabled")
		writeError(w, http.StatusServiceUnavailable, "receipt parsing is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.Receipt("too_large")
			writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		h.metrics.Receipt("bad_request")
		writeError(w, http.StatusBadRequest, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.metrics.Receipt("bad_request")
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	format, err := receipt.ValidateImage(data)
	if err != nil {
		h.metrics.Receipt("invalid_image")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	parsed, err := h.parser.Parse(r.Context(), data, header.Filename)
	if err != nil {
		slog.Error("Receipt parsing failed", "filename", header.Filename, "error", err)
		h.metrics.Receipt("upstream_error")
		writeError(w, http.StatusBadGateway, "failed to process receipt")
		return
	}

	bill := parsed.ToBill()
	slog.Info("Receipt parsed",
		"format", format,
		"bytes", len(data),
		"items", len(bill.Items),
		"total", bill.Total,
	)
	h.metrics.Receipt("ok")
	writeJSON(w, http.StatusOK, ReceiptResponse{Parsed: *parsed, Bill: bill})
}
