package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/star-temple/starprint/internal/infrastructure/bridge"
	"github.com/star-temple/starprint/pkg/printer"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var listen, device string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the WebSocket print bridge",
		Long: `Run the local print bridge. Every WebSocket message received on the
listen address is written to the attached printer, one job at a time.

The device is taken from BRIDGE_DEVICE_TYPE (usb or network) with
PRINTER_USB_PATH or PRINTER_ADDRESS.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Bridge.ListenAddr
			}
			if device == "" {
				device = a.cfg.Bridge.DeviceType
			}
			if device == printer.TypeBridge {
				return fmt.Errorf("bridge device type %q would forward to itself", device)
			}

			p, err := printer.NewPrinterFromConfig(printer.Options{
				Type:    device,
				USBPath: a.cfg.Printer.USBPath,
				Address: a.cfg.Printer.Address,
			})
			if err != nil {
				return err
			}
			defer p.Close()

			if !p.IsConnected(cmd.Context()) {
				a.log.Warn("Printer not reachable yet, jobs will fail until it is", zap.String("device", device))
			}

			return bridge.NewRelay(p, device, a.log).ListenAndServe(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default BRIDGE_LISTEN_ADDR)")
	cmd.Flags().StringVar(&device, "device", "", "printer device type: usb, network or none (default BRIDGE_DEVICE_TYPE)")
	return cmd
}
