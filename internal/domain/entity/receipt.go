package entity

import "strings"

// Language selects which seva name variant a caller asked for.
type Language string

const (
	LanguageEnglish Language = "EN"
	LanguageKannada Language = "KN"
)

// ParseLanguage maps a request tag to a Language. Anything unrecognised is English.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(LanguageKannada)) {
		return LanguageKannada
	}
	return LanguageEnglish
}

// ReceiptData holds the fields printed on a seva receipt.
// It is a value object built fresh for every print request and never stored.
type ReceiptData struct {
	ReceiptNo     string  `json:"receipt_no"`
	Date          string  `json:"date"` // already formatted for display
	DevoteeName   string  `json:"devotee_name"`
	DevoteeNameEn string  `json:"devotee_name_en,omitempty"`
	Gothra        string  `json:"gothra,omitempty"`
	Nakshatra     string  `json:"nakshatra,omitempty"`
	AmountPaid    float64 `json:"amount_paid"`
}

// DisplayName prefers the English devotee name, which every printer font can render.
func (r *ReceiptData) DisplayName() string {
	if r.DevoteeNameEn != "" {
		return r.DevoteeNameEn
	}
	return r.DevoteeName
}

// SevaInfo names the booked seva.
type SevaInfo struct {
	NameEng string `json:"name_eng"`
	NameKan string `json:"name_kan,omitempty"`
}
