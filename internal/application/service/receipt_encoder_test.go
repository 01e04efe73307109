package service

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dashes = strings.Repeat("-", 32) + "\n"

func sampleReceipt() *entity.ReceiptData {
	return &entity.ReceiptData{
		ReceiptNo:     "R100",
		Date:          "01-01-2025",
		DevoteeNameEn: "Ravi Kumar",
		AmountPaid:    501,
		Gothra:        "Bharadwaja",
	}
}

func lines(data []byte) []string {
	return strings.Split(printer.PlainText(data), "\n")
}

func TestEncodeReceiptGolden(t *testing.T) {
	got := EncodeReceipt(sampleReceipt(), &entity.SevaInfo{NameEng: "Archane"}, entity.LanguageEnglish)

	want := "\x1b@" +
		"\x1ba\x01" + "\x1bE\x01" + "\x1d!\x11" +
		"SRI SUBRAMANYA SWAMY TEMPLE\n" +
		"\x1d!\x00" + "\x1bE\x00" +
		"Tarikere - 577228\n" +
		dashes +
		"\x1ba\x00" +
		"Rcpt #: R100\n" +
		"Date  : 01-01-2025\n" +
		dashes +
		"\x1bE\x01" +
		"Name: Ravi Kumar\n" +
		"Seva: Archane\n" +
		"\x1bE\x00" +
		"Gothra: Bharadwaja\n" +
		dashes +
		"\x1ba\x02" + "\x1d!\x11" +
		"TOTAL: Rs. 501\n" +
		"\x1d!\x00" + "\x1ba\x01" +
		dashes +
		"Sarve Jana Sukhino Bhavantu\n" +
		"\n\n\n" +
		"\x1dVA\x03"

	assert.Equal(t, want, string(got))
}

func TestEncodeReceiptScenarioLines(t *testing.T) {
	got := lines(EncodeReceipt(sampleReceipt(), &entity.SevaInfo{NameEng: "Archane"}, entity.LanguageEnglish))

	assert.Contains(t, got, "Rcpt #: R100")
	assert.Contains(t, got, "Name: Ravi Kumar")
	assert.Contains(t, got, "Seva: Archane")
	assert.Contains(t, got, "Gothra: Bharadwaja")
	assert.Contains(t, got, "TOTAL: Rs. 501")
	for _, l := range got {
		assert.False(t, strings.HasPrefix(l, "Star"), "unexpected line %q", l)
	}
}

func TestEncodeReceiptFraming(t *testing.T) {
	inputs := []*entity.ReceiptData{
		sampleReceipt(),
		{},
		{ReceiptNo: "X", Nakshatra: "Ashwini", AmountPaid: 20.5},
	}
	for _, r := range inputs {
		out := EncodeReceipt(r, &entity.SevaInfo{NameEng: "Abhisheka"}, entity.LanguageKannada)
		assert.True(t, bytes.HasPrefix(out, printer.CmdInit.Bytes()))
		assert.True(t, bytes.HasSuffix(out, printer.CmdCut.Bytes()))
	}
}

func TestEncodeReceiptNeverPrintsKannadaSevaName(t *testing.T) {
	r := sampleReceipt()
	seva := &entity.SevaInfo{NameEng: "Kumkumarchane", NameKan: "ಕುಂಕುಮಾರ್ಚನೆ"}

	kn := EncodeReceipt(r, seva, entity.LanguageKannada)
	en := EncodeReceipt(r, &entity.SevaInfo{NameEng: "Kumkumarchane"}, entity.LanguageEnglish)

	assert.Equal(t, en, kn)
	assert.Contains(t, lines(kn), "Seva: Kumkumarchane")
	assert.NotContains(t, string(kn), seva.NameKan)
}

func TestEncodeReceiptOptionalFields(t *testing.T) {
	seva := &entity.SevaInfo{NameEng: "Archane"}

	withNone := sampleReceipt()
	withNone.Gothra = ""
	out := lines(EncodeReceipt(withNone, seva, entity.LanguageEnglish))
	for _, l := range out {
		assert.False(t, strings.HasPrefix(l, "Gothra"), "stray label %q", l)
		assert.False(t, strings.HasPrefix(l, "Star"), "stray label %q", l)
	}

	withStar := sampleReceipt()
	withStar.Nakshatra = "Rohini"
	out = lines(EncodeReceipt(withStar, seva, entity.LanguageEnglish))
	assert.Contains(t, out, "Star  : Rohini")

	// Removing the optional lines from a full receipt yields the bare receipt.
	full := string(EncodeReceipt(withStar, seva, entity.LanguageEnglish))
	stripped := strings.Replace(full, "Gothra: Bharadwaja\n", "", 1)
	stripped = strings.Replace(stripped, "Star  : Rohini\n", "", 1)
	assert.Equal(t, string(EncodeReceipt(withNone, seva, entity.LanguageEnglish)), stripped)
}

func TestEncodeReceiptIsDeterministic(t *testing.T) {
	seva := &entity.SevaInfo{NameEng: "Archane"}
	a := EncodeReceipt(sampleReceipt(), seva, entity.LanguageEnglish)
	b := EncodeReceipt(sampleReceipt(), seva, entity.LanguageEnglish)
	assert.Equal(t, a, b)
}

func TestEncodeReceiptNameFallback(t *testing.T) {
	r := sampleReceipt()
	r.DevoteeNameEn = ""
	r.DevoteeName = "ರವಿ ಕುಮಾರ್"

	out := lines(EncodeReceipt(r, &entity.SevaInfo{NameEng: "Archane"}, entity.LanguageEnglish))
	assert.Contains(t, out, "Name: ರವಿ ಕುಮಾರ್")
}

func TestEncodeReceiptDoesNotMutateInput(t *testing.T) {
	r := sampleReceipt()
	before := *r
	EncodeReceipt(r, &entity.SevaInfo{NameEng: "Archane"}, entity.LanguageKannada)
	assert.Equal(t, before, *r)
}

func TestReceiptHeaderCustomText(t *testing.T) {
	h := ReceiptHeader{TempleName: "BRAHMANA SEVA SAMITHI", Address: "Devarappa Street", Footer: "Thank You"}
	out := lines(h.Encode(sampleReceipt(), &entity.SevaInfo{NameEng: "Archane"}, entity.LanguageEnglish))

	require.NotEmpty(t, out)
	assert.Equal(t, "BRAHMANA SEVA SAMITHI", out[0])
	assert.Equal(t, "Devarappa Street", out[1])
	assert.Contains(t, out, "Thank You")
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		501:     "501",
		20.5:    "20.5",
		1500.75: "1500.75",
		100000:  "100000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(in))
	}
	assert.Equal(t, "0", FormatAmount(math.Copysign(0, -1)))
}
