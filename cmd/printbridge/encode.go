package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"
	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/internal/presentation/http/dto/request"
	"github.com/star-temple/starprint/pkg/printer"
)

// readReceipt loads a {receipt, seva, lang} document from path ("-" is stdin)
// and validates it with the same rules as the HTTP API.
func readReceipt(cmd *cobra.Command, path, lang string) (*entity.ReceiptData, *entity.SevaInfo, entity.Language, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, "", err
		}
		defer f.Close()
		r = f
	}

	var req request.PrintReceiptRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if lang != "" {
		req.Lang = lang
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, nil, "", fmt.Errorf("invalid receipt: %w", err)
	}

	data, seva, l := req.ToEntities()
	return data, seva, l, nil
}

func newEncodeCmd(a *app) *cobra.Command {
	var file, lang, out string
	var plain bool

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a receipt to ESC/POS",
		Long: `Encode a receipt JSON file into the ESC/POS byte stream the printer
receives. With --plain the printable text is written instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, seva, l, err := readReceipt(cmd, file, lang)
			if err != nil {
				return err
			}

			raw := a.receiptHeader().Encode(data, seva, l)
			if plain {
				raw = []byte(printer.PlainText(raw))
			}

			if out != "" {
				return os.WriteFile(out, raw, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "receipt JSON file, - for stdin")
	cmd.Flags().StringVar(&lang, "lang", "", "receipt language: EN or KN")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&plain, "plain", false, "write the printable text instead of ESC/POS bytes")
	return cmd
}
