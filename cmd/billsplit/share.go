package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/report"
	"github.com/mmynk/splitbill/internal/share"
)

func newShareCmd(opts *options) *cobra.Command {
	var (
		file     string
		passcode string
	)

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Upload a bill file and print a link to its summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadBillFile(file)
			if err != nil {
				return err
			}
			// Refuse to share a split that cannot be computed.
			if _, err := runWizard(f); err != nil {
				return err
			}

			snap, err := share.NewSnapshot(f.Bill, f.People, f.PaymentMethods)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			created, err := share.NewClient(opts.server, http.DefaultClient).Create(ctx, share.CreateRequest{
				BillData:       snap.BillData,
				People:         snap.People,
				PaymentMethods: snap.PaymentMethods,
				Passcode:       passcode,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:         %s\n", created.ID)
			if created.URL != "" {
				fmt.Fprintf(out, "URL:        %s\n", created.URL)
			}
			fmt.Fprintf(out, "Edit token: %s\n", created.EditToken)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "bill file (YAML, - for stdin)")
	cmd.Flags().StringVar(&passcode, "passcode", "", "require this passcode to view the share")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newFetchCmd(opts *options) *cobra.Command {
	var (
		passcode string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Download a shared bill and print its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			snap, err := share.NewClient(opts.server, http.DefaultClient).Get(ctx, args[0], passcode)
			if err != nil {
				return err
			}
			b, people, methods, err := snap.Decode()
			if err != nil {
				return err
			}

			summaries := calculator.Allocate(b, people)
			switch format {
			case formatJSON:
				return writeJSON(cmd.OutOrStdout(), splitResult{Summaries: summaries, Check: calculator.Check(b, summaries)})
			case formatText:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Text(b, summaries, methods))
				return err
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringVar(&passcode, "passcode", "", "passcode of a protected share")
	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")
	return cmd
}
