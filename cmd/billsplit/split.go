package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/report"
	"github.com/mmynk/splitbill/internal/service"
	"github.com/mmynk/splitbill/internal/wizard"
)

func newSplitCmd(opts *options) *cobra.Command {
	var (
		file   string
		format string
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a bill file and print what everyone owes",
		Example: `  billsplit split -f dinner.yaml
  billsplit split -f dinner.yaml --format json
  billsplit split -f dinner.yaml --remote --server http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadBillFile(file)
			if err != nil {
				return err
			}
			if remote {
				return splitRemote(cmd.Context(), cmd.OutOrStdout(), opts, f, format)
			}
			return splitLocal(cmd.OutOrStdout(), f, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "bill file (YAML, - for stdin)")
	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")
	cmd.Flags().BoolVar(&remote, "remote", false, "allocate on the server instead of locally")
	cmd.MarkFlagRequired("file")
	return cmd
}

type splitResult struct {
	Summaries []models.PersonSummary    `json:"summaries"`
	Check     calculator.Reconciliation `json:"check"`
}

// runWizard walks a session through every step with the file's contents,
// applying the same checks as the interactive flow.
func runWizard(f *billFile) (*wizard.Session, error) {
	s := wizard.NewSession()
	if err := s.LoadReceipt(f.Bill, ""); err != nil {
		return nil, err
	}
	if err := s.Fire(wizard.EventItemsConfirmed); err != nil {
		return nil, err
	}
	if err := s.SetPeople(f.People); err != nil {
		return nil, err
	}
	if err := s.Fire(wizard.EventPeopleConfirmed); err != nil {
		return nil, fmt.Errorf("bill file: %w", err)
	}
	if err := s.Fire(wizard.EventAssignmentsConfirmed); err != nil {
		return nil, err
	}
	s.SetPaymentMethods(f.PaymentMethods)
	return s, nil
}

func splitLocal(w io.Writer, f *billFile, format string) error {
	s, err := runWizard(f)
	if err != nil {
		return err
	}
	b, _ := s.Bill()
	summaries := s.Summaries()

	switch format {
	case formatJSON:
		return writeJSON(w, splitResult{Summaries: summaries, Check: calculator.Check(b, summaries)})
	case formatText:
		_, err := fmt.Fprintln(w, report.Text(b, summaries, s.PaymentMethods()))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func splitRemote(ctx context.Context, w io.Writer, opts *options, f *billFile, format string) error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown format %q", format)
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	client := service.NewAllocationServiceClient(http.DefaultClient, opts.server)
	resp, err := client.Allocate(ctx, connect.NewRequest(&service.AllocateRequest{
		Bill:           f.Bill,
		Participants:   f.People,
		PaymentMethods: f.PaymentMethods,
		IncludeText:    format == formatText,
	}))
	if err != nil {
		return fmt.Errorf("failed to allocate: %w", err)
	}

	if format == formatJSON {
		return writeJSON(w, splitResult{Summaries: resp.Msg.Summaries, Check: resp.Msg.Check})
	}
	_, err = fmt.Fprintln(w, resp.Msg.Text)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
