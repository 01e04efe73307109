package main

import (
	"github.com/spf13/cobra"
	"github.com/star-temple/starprint/internal/application/service"
	"github.com/star-temple/starprint/internal/config"
	"github.com/star-temple/starprint/pkg/logger"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func (a *app) receiptHeader() service.ReceiptHeader {
	return service.ReceiptHeader{
		TempleName: a.cfg.Receipt.TempleName,
		Address:    a.cfg.Receipt.Address,
		Footer:     a.cfg.Receipt.Footer,
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var debug bool

	root := &cobra.Command{
		Use:   "printbridge",
		Short: "Temple counter print bridge",
		Long: `printbridge connects the seva counter to its thermal printer.

Available subcommands:
  serve  - Run the WebSocket print bridge on this machine
  encode - Encode a receipt JSON file to ESC/POS bytes or a text preview
  send   - Encode a receipt and deliver it through a running bridge
  token  - Issue a station token for a counter terminal`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			log, err := logger.New(a.cfg.App.Env, debug || a.cfg.App.Debug)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newEncodeCmd(a),
		newSendCmd(a),
		newTokenCmd(a),
	)
	return root
}
