package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrintJobSource says what triggered a print.
type PrintJobSource string

const (
	PrintJobSourceDirect  PrintJobSource = "direct"
	PrintJobSourceReprint PrintJobSource = "reprint"
	PrintJobSourceTest    PrintJobSource = "test"
)

// PrintJobStatus is the transport outcome of a print. "sent" means the job
// reached the printer transport, not that paper came out.
type PrintJobStatus string

const (
	PrintJobStatusSent   PrintJobStatus = "sent"
	PrintJobStatusFailed PrintJobStatus = "failed"
)

// PrintJob is the audit record of one print attempt. It keeps the receipt
// number only; receipt contents are never stored.
type PrintJob struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReceiptNo     string         `gorm:"size:50;index" json:"receipt_no"`
	TransactionID *int           `gorm:"index" json:"transaction_id,omitempty"`
	Station       string         `gorm:"size:100;index" json:"station"`
	Source        PrintJobSource `gorm:"size:20;not null" json:"source"`
	Status        PrintJobStatus `gorm:"size:20;not null;index" json:"status"`
	PrinterType   string         `gorm:"size:20" json:"printer_type"`
	Error         string         `gorm:"type:text" json:"error,omitempty"`
	Bytes         int            `json:"bytes"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns the ID so inserts do not depend on a database default.
func (j *PrintJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

func (PrintJob) TableName() string {
	return "print_jobs"
}
