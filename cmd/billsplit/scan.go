package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/receipt"
	"github.com/mmynk/splitbill/internal/service"
)

func newScanCmd(opts *options) *cobra.Command {
	var ocrURL string

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Read a receipt photo into a bill file",
		Long: `Sends a receipt image to the OCR service and prints a bill file with the
parsed items. Add people and assignments, then pass it to "billsplit split".

By default the image goes through the server's /api/receipt endpoint; with
--ocr-url the OCR service is called directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			if _, err := receipt.ValidateImage(data); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var b models.Bill
			filename := filepath.Base(args[0])
			if ocrURL != "" {
				parsed, err := receipt.NewClient(ocrURL, receipt.Options{Timeout: opts.timeout}).Parse(ctx, data, filename)
				if err != nil {
					return err
				}
				b = parsed.ToBill()
			} else {
				b, err = scanViaServer(ctx, opts.server, data, filename)
				if err != nil {
					return err
				}
			}

			out, err := yaml.Marshal(billFile{Bill: b, People: []models.Participant{}})
			if err != nil {
				return fmt.Errorf("failed to encode bill file: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&ocrURL, "ocr-url", "", "call this OCR endpoint directly")
	return cmd
}

func scanViaServer(ctx context.Context, server string, image []byte, filename string) (models.Bill, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return models.Bill{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.Bill{}, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(server, "/")+"/api/receipt", &body)
	if err != nil {
		return models.Bill{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return models.Bill{}, fmt.Errorf("receipt upload failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out service.ReceiptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Bill{}, fmt.Errorf("failed to decode receipt: %w", err)
	}
	return out.Bill, nil
}
