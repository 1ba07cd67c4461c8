// Command billsplit splits bills from the terminal and talks to a splitbill
// server for receipt scanning and sharing.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitbill/pkg/logging"
)

const (
	defaultServer = "http://localhost:8080"

	formatText = "text"
	formatJSON = "json"
)

type options struct {
	server   string
	logLevel string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "billsplit",
		Short: "Split a bill proportionally among participants",
		Long: `billsplit divides a bill among participants. Tax, service charge and
discount are prorated by each person's share of the subtotal, and items
nobody claimed are spread evenly.

Bill files are YAML with "bill", "people" and optional "paymentMethods".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWithLevel(logging.ParseLevel(opts.logLevel))
		},
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr("SPLITBILL_SERVER", defaultServer), "splitbill server URL")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "timeout for server requests")

	root.AddCommand(
		newSplitCmd(opts),
		newScanCmd(opts),
		newShareCmd(opts),
		newFetchCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
