package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// ErrUnavailable is returned for every failure to get a usable answer from
// the parser: network errors, non-2xx replies, undecodable bodies and an open
// circuit.
var ErrUnavailable = errors.New("receipt parser unavailable")

const (
	defaultTimeout          = 60 * time.Second
	defaultMaxConcurrent    = 3
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second

	// maxResponseBytes caps how much of the parser reply is read.
	maxResponseBytes = 1 << 20
)

var tracer = otel.Tracer("github.com/mmynk/splitbill/internal/receipt")

// Options tunes a Client. Zero values select the defaults.
type Options struct {
	HTTPClient *http.Client

	// Timeout bounds a single parse call.
	Timeout time.Duration

	// MaxConcurrent limits in-flight calls to the parser.
	MaxConcurrent int64

	// FailureThreshold is the number of consecutive failures that opens the
	// circuit. OpenTimeout is how long it stays open.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client posts receipt images to the parsing service.
// It is safe for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	sem        *semaphore.Weighted
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a client for the parser at url.
func NewClient(url string, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = defaultFailureThreshold
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}

	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "receipt-parser",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		url:        url,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		sem:        semaphore.NewWeighted(opts.MaxConcurrent),
		breaker:    breaker,
	}
}

// Parse uploads the image as multipart field "image" and returns the parsed
// receipt. The call is attempted once.
func (c *Client) Parse(ctx context.Context, image []byte, filename string) (*Parsed, error) {
	ctx, span := tracer.Start(ctx, "receipt.Parse")
	defer span.End()
	span.SetAttributes(attribute.Int("receipt.image_bytes", len(image)))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fail(span, fmt.Errorf("failed to acquire parser slot: %w", err))
	}
	defer c.sem.Release(1)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, image, filename)
	})
	if err != nil {
		return nil, fail(span, err)
	}

	parsed := result.(*Parsed)
	span.SetAttributes(attribute.Int("receipt.items", len(parsed.Items)))
	return parsed, nil
}

// State reports the circuit breaker state, for health reporting.
func (c *Client) State() string {
	return c.breaker.State().String()
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *Client) post(ctx context.Context, image []byte, filename string) (*Parsed, error) {
	if filename == "" {
		filename = "receipt"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call parser: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read parser response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("parser returned status %d", resp.StatusCode)
	}

	parsed, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode parser response: %w", err)
	}
	return parsed, nil
}
