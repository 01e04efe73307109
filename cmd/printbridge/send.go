package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/star-temple/starprint/pkg/printer"
	"go.uber.org/zap"
)

func newSendCmd(a *app) *cobra.Command {
	var file, lang, url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Encode a receipt and send it through the print bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, seva, l, err := readReceipt(cmd, file, lang)
			if err != nil {
				return err
			}
			if url == "" {
				url = a.cfg.Printer.BridgeURL
			}
			if timeout <= 0 {
				timeout = a.cfg.Printer.BridgeTimeout
			}

			client := printer.NewBridgeClient(url, timeout)
			result, err := client.Send(cmd.Context(), a.receiptHeader().Encode(data, seva, l))
			if err != nil {
				a.log.Warn("Bridge send failed",
					zap.String("url", client.URL()),
					zap.String("receipt_no", data.ReceiptNo),
					zap.NamedError("cause", errors.Unwrap(err)),
				)
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "receipt JSON file, - for stdin")
	cmd.Flags().StringVar(&lang, "lang", "", "receipt language: EN or KN")
	cmd.Flags().StringVar(&url, "url", "", "bridge WebSocket URL (default PRINTER_BRIDGE_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "connect and send timeout (default PRINTER_BRIDGE_TIMEOUT_SECONDS)")
	return cmd
}
