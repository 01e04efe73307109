package service

import (
	"strconv"

	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/pkg/printer"
)

// ReceiptWidth is the character width of 58mm receipt paper.
const ReceiptWidth = 32

// Fixed receipt text.
const (
	DefaultTempleName    = "SRI SUBRAMANYA SWAMY TEMPLE"
	DefaultTempleAddress = "Tarikere - 577228"
	DefaultFooter        = "Sarve Jana Sukhino Bhavantu"
)

// ReceiptHeader is the temple text printed around every receipt.
type ReceiptHeader struct {
	TempleName string
	Address    string
	Footer     string
}

// DefaultReceiptHeader returns the temple's standard header and footer.
func DefaultReceiptHeader() ReceiptHeader {
	return ReceiptHeader{
		TempleName: DefaultTempleName,
		Address:    DefaultTempleAddress,
		Footer:     DefaultFooter,
	}
}

// EncodeReceipt renders a seva receipt with the default header.
func EncodeReceipt(r *entity.ReceiptData, seva *entity.SevaInfo, lang entity.Language) []byte {
	return DefaultReceiptHeader().Encode(r, seva, lang)
}

// Encode converts a receipt into ESC/POS bytes.
//
// The seva line is always the English name: receipt printers here have no
// Kannada font, so lang never changes the output. Devotee name, gothra and
// nakshatra are passed through as given. Nothing is validated.
func (h ReceiptHeader) Encode(r *entity.ReceiptData, seva *entity.SevaInfo, lang entity.Language) []byte {
	doc := printer.NewDocument(ReceiptWidth)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetDoubleHeight(true).
		Text(h.TempleName).
		SetDoubleHeight(false).
		SetBold(false).
		Text(h.Address).
		Separator('-')

	// Details
	doc.SetAlign(printer.AlignLeft).
		Text("Rcpt #: " + r.ReceiptNo).
		Text("Date  : " + r.Date).
		Separator('-')

	// Name & Seva
	doc.SetBold(true).
		Text("Name: " + r.DisplayName()).
		Text("Seva: " + seva.NameEng).
		SetBold(false)

	if r.Gothra != "" {
		doc.Text("Gothra: " + r.Gothra)
	}
	if r.Nakshatra != "" {
		doc.Text("Star  : " + r.Nakshatra)
	}

	doc.Separator('-')

	// Amount
	doc.SetAlign(printer.AlignRight).
		SetDoubleHeight(true).
		Text("TOTAL: Rs. " + FormatAmount(r.AmountPaid)).
		SetDoubleHeight(false).
		SetAlign(printer.AlignCenter).
		Separator('-')

	// Footer
	doc.Text(h.Footer).
		Text("\n\n").
		Cut()

	return doc.Bytes()
}

// FormatAmount prints an amount in its shortest form: 501, 20.5, 1500.75.
// No grouping and no forced decimals.
func FormatAmount(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
