package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/metrics"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/report"
)

const (
	// AllocationServiceName is the fully-qualified name of the allocation service.
	AllocationServiceName = "splitbill.v1.AllocationService"

	// AllocationServiceAllocateProcedure is the path of the Allocate RPC.
	AllocationServiceAllocateProcedure = "/" + AllocationServiceName + "/Allocate"
)

// AllocateRequest is the input of the Allocate RPC.
type AllocateRequest struct {
	Bill         models.Bill          `json:"bill"`
	Participants []models.Participant `json:"participants"`

	// PaymentMethods and IncludeText control the optional plain-text summary.
	PaymentMethods []models.PaymentMethod `json:"paymentMethods,omitempty"`
	IncludeText    bool                   `json:"includeText,omitempty"`
}

// AllocateResponse is the output of the Allocate RPC.
type AllocateResponse struct {
	Summaries []models.PersonSummary    `json:"summaries"`
	Check     calculator.Reconciliation `json:"check"`
	Text      string                    `json:"text,omitempty"`
}

// AllocationService implements the Connect AllocationService.
type AllocationService struct {
	metrics *metrics.Metrics
}

// NewAllocationService creates a new AllocationService. m may be nil.
func NewAllocationService(m *metrics.Metrics) *AllocationService {
	return &AllocationService{metrics: m}
}

// Allocate splits the bill among the participants. It never fails for
// arithmetic reasons: empty or inconsistent bills produce zero shares.
func (s *AllocationService) Allocate(
	ctx context.Context,
	req *connect.Request[AllocateRequest],
) (*connect.Response[AllocateResponse], error) {
	msg := req.Msg
	summaries := calculator.Allocate(msg.Bill, msg.Participants)
	check := calculator.Check(msg.Bill, summaries)
	s.metrics.Allocated()

	slog.Debug("Bill allocated",
		"items", len(msg.Bill.Items),
		"participants", len(msg.Participants),
		"balanced", check.Balanced,
		"difference", check.Difference,
	)
	if !check.Balanced {
		slog.Info("Allocation does not match bill total",
			"bill_total", check.BillTotal,
			"total_check", check.TotalCheck,
		)
	}

	resp := &AllocateResponse{Summaries: summaries, Check: check}
	if msg.IncludeText {
		resp.Text = report.Text(msg.Bill, summaries, msg.PaymentMethods)
	}
	return connect.NewResponse(resp), nil
}

// NewAllocationServiceHandler builds an HTTP handler for the service and
// returns the path to mount it on.
func NewAllocationServiceHandler(svc *AllocationService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	allocateHandler := connect.NewUnaryHandler(
		AllocationServiceAllocateProcedure,
		svc.Allocate,
		opts...,
	)
	return "/" + AllocationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AllocationServiceAllocateProcedure:
			allocateHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// AllocationServiceClient calls the allocation service.
type AllocationServiceClient struct {
	allocate *connect.Client[AllocateRequest, AllocateResponse]
}

// NewAllocationServiceClient creates a client for the server at baseURL.
func NewAllocationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AllocationServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &AllocationServiceClient{
		allocate: connect.NewClient[AllocateRequest, AllocateResponse](
			httpClient,
			baseURL+AllocationServiceAllocateProcedure,
			opts...,
		),
	}
}

// Allocate calls splitbill.v1.AllocationService.Allocate.
func (c *AllocationServiceClient) Allocate(ctx context.Context, req *connect.Request[AllocateRequest]) (*connect.Response[AllocateResponse], error) {
	return c.allocate.CallUnary(ctx, req)
}
