package entity

import "time"

// The tables below belong to the booking backend. This service only reads
// them to rebuild receipts, so they are never auto-migrated here.

// Seva is a row of the seva catalog.
type Seva struct {
	ID       int     `gorm:"primaryKey" json:"id"`
	NameEng  string  `gorm:"column:name_eng" json:"name_eng"`
	NameKan  *string `gorm:"column:name_kan" json:"name_kan,omitempty"`
	Price    float64 `gorm:"column:price;type:numeric(10,2)" json:"price"`
	IsActive bool    `gorm:"column:is_active" json:"is_active"`
}

func (Seva) TableName() string {
	return "seva_catalog"
}

// Info returns the name pair used when printing.
func (s *Seva) Info() SevaInfo {
	info := SevaInfo{NameEng: s.NameEng}
	if s.NameKan != nil {
		info.NameKan = *s.NameKan
	}
	return info
}

// Devotee is a registered devotee profile.
type Devotee struct {
	ID         int     `gorm:"primaryKey" json:"id"`
	FullNameEn string  `gorm:"column:full_name_en" json:"full_name_en"`
	FullNameKn *string `gorm:"column:full_name_kn" json:"full_name_kn,omitempty"`
	Phone      *string `gorm:"column:phone_number" json:"phone_number,omitempty"`
	GothraEn   *string `gorm:"column:gothra_en" json:"gothra_en,omitempty"`
	Nakshatra  *string `gorm:"column:nakshatra" json:"nakshatra,omitempty"`
}

func (Devotee) TableName() string {
	return "devotees"
}

// Transaction is one booked seva with its payment.
type Transaction struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	ReceiptNo       string    `gorm:"column:receipt_no" json:"receipt_no"`
	DevoteeID       int       `gorm:"column:devotee_id" json:"devotee_id"`
	SevaID          int       `gorm:"column:seva_id" json:"seva_id"`
	AmountPaid      float64   `gorm:"column:amount_paid;type:numeric(10,2)" json:"amount_paid"`
	PaymentMode     string    `gorm:"column:payment_mode" json:"payment_mode"`
	DevoteeName     string    `gorm:"column:devotee_name" json:"devotee_name"`
	TransactionDate time.Time `gorm:"column:transaction_date" json:"transaction_date"`

	Devotee *Devotee `gorm:"foreignKey:DevoteeID" json:"devotee,omitempty"`
	Seva    *Seva    `gorm:"foreignKey:SevaID" json:"seva,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
