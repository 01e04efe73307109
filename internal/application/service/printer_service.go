package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/internal/domain/repository"
	"github.com/star-temple/starprint/pkg/apperror"
	"github.com/star-temple/starprint/pkg/pagination"
	"github.com/star-temple/starprint/pkg/printer"
	"github.com/star-temple/starprint/pkg/templetime"
	"go.uber.org/zap"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	printerType string
	header      ReceiptHeader
	txRepo      repository.TransactionRepository
	jobRepo     repository.PrintJobRepository
	log         *zap.Logger
	now         func() time.Time
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	printerType string,
	header ReceiptHeader,
	txRepo repository.TransactionRepository,
	jobRepo repository.PrintJobRepository,
	log *zap.Logger,
) *PrinterService {
	return &PrinterService{
		printer:     p,
		printerType: printerType,
		header:      header,
		txRepo:      txRepo,
		jobRepo:     jobRepo,
		log:         log,
		now:         templetime.Now,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	BridgeURL  string `json:"bridge_url,omitempty"`
}

// ReceiptPreview is an encoded receipt in two forms: the raw ESC/POS stream
// and the printable text a clerk can check on screen.
type ReceiptPreview struct {
	Text      string   `json:"text"`
	RawBase64 string   `json:"raw_base64"`
	Bytes     int      `json:"bytes"`
	Commands  []string `json:"commands"`
}

// PrintResult is what a print request produced.
type PrintResult struct {
	Job     *entity.PrintJob    `json:"job"`
	Result  string              `json:"result,omitempty"`
	Receipt *entity.ReceiptData `json:"receipt"`
	Preview *ReceiptPreview     `json:"preview"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	status := &PrinterStatus{
		Configured: s.printerType != printer.TypeNone && s.printerType != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printerType,
	}
	if bc, ok := s.printer.(*printer.BridgeClient); ok {
		status.BridgeURL = bc.URL()
	}
	return status
}

// Preview encodes a receipt without printing it.
func (s *PrinterService) Preview(data *entity.ReceiptData, seva *entity.SevaInfo, lang entity.Language) *ReceiptPreview {
	return newPreview(s.header.Encode(data, seva, lang))
}

// PrintReceipt encodes the receipt and hands it to the printer.
// On a transport failure the result is still returned, with a failed job.
func (s *PrinterService) PrintReceipt(
	ctx context.Context,
	station string,
	data *entity.ReceiptData,
	seva *entity.SevaInfo,
	lang entity.Language,
) (*PrintResult, error) {
	return s.print(ctx, station, entity.PrintJobSourceDirect, nil, data, seva, lang)
}

// ReprintTransaction rebuilds the receipt of a booked transaction and prints it.
func (s *PrinterService) ReprintTransaction(ctx context.Context, station string, transactionID int, lang entity.Language) (*PrintResult, error) {
	tx, err := s.txRepo.GetWithDetails(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	if tx.Seva == nil {
		return nil, apperror.NewNotFoundError("Seva")
	}

	data := ReceiptFromTransaction(tx)
	seva := tx.Seva.Info()
	return s.print(ctx, station, entity.PrintJobSourceReprint, &tx.ID, data, &seva, lang)
}

// TestPrint sends a sample receipt to the printer.
func (s *PrinterService) TestPrint(ctx context.Context, station string) (*PrintResult, error) {
	data := &entity.ReceiptData{
		ReceiptNo:     "TEST-001",
		Date:          templetime.FormatReceiptDate(s.now()),
		DevoteeNameEn: "Printer Test",
		AmountPaid:    0,
	}
	seva := &entity.SevaInfo{NameEng: "Test Print"}
	return s.print(ctx, station, entity.PrintJobSourceTest, nil, data, seva, entity.LanguageEnglish)
}

// ListJobs returns the print audit log, newest first.
func (s *PrinterService) ListJobs(ctx context.Context, params *repository.PrintJobFilterParams) (*pagination.PaginatedResult[entity.PrintJob], error) {
	params.Validate()

	jobs, total, err := s.jobRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}

	return pagination.NewPaginatedResult(jobs, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ReceiptFromTransaction builds the printable receipt of a stored booking.
func ReceiptFromTransaction(tx *entity.Transaction) *entity.ReceiptData {
	data := &entity.ReceiptData{
		ReceiptNo:   tx.ReceiptNo,
		Date:        templetime.FormatReceiptDate(tx.TransactionDate),
		DevoteeName: tx.DevoteeName,
		AmountPaid:  tx.AmountPaid,
	}

	if d := tx.Devotee; d != nil {
		data.DevoteeNameEn = d.FullNameEn
		if d.GothraEn != nil {
			data.Gothra = *d.GothraEn
		}
		if d.Nakshatra != nil {
			data.Nakshatra = *d.Nakshatra
		}
	}

	return data
}

func (s *PrinterService) print(
	ctx context.Context,
	station string,
	source entity.PrintJobSource,
	transactionID *int,
	data *entity.ReceiptData,
	seva *entity.SevaInfo,
	lang entity.Language,
) (*PrintResult, error) {
	raw := s.header.Encode(data, seva, lang)

	job := &entity.PrintJob{
		ID:            uuid.New(),
		ReceiptNo:     data.ReceiptNo,
		TransactionID: transactionID,
		Station:       station,
		Source:        source,
		PrinterType:   s.printerType,
		Bytes:         len(raw),
		Status:        entity.PrintJobStatusSent,
	}

	printErr := s.printer.Print(ctx, raw)
	if printErr != nil {
		job.Status = entity.PrintJobStatusFailed
		job.Error = printErr.Error()
	}

	s.recordJob(ctx, job)

	result := &PrintResult{
		Job:     job,
		Receipt: data,
		Preview: newPreview(raw),
	}

	if printErr != nil {
		s.log.Warn("Printer error",
			zap.String("job_id", job.ID.String()),
			zap.String("receipt_no", data.ReceiptNo),
			zap.String("station", station),
			zap.String("source", string(source)),
			zap.Error(printErr),
		)
		return result, fmt.Errorf("failed to print receipt %s: %w", data.ReceiptNo, printErr)
	}

	result.Result = printer.BridgeSent
	s.log.Info("Receipt sent to printer",
		zap.String("job_id", job.ID.String()),
		zap.String("receipt_no", data.ReceiptNo),
		zap.String("station", station),
		zap.String("source", string(source)),
		zap.Int("bytes", len(raw)),
	)
	return result, nil
}

// recordJob stores the audit record. The print outcome stands even if this fails.
func (s *PrinterService) recordJob(ctx context.Context, job *entity.PrintJob) {
	if s.jobRepo == nil {
		return
	}
	if err := s.jobRepo.Create(context.WithoutCancel(ctx), job); err != nil {
		s.log.Error("Failed to record print job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

func newPreview(raw []byte) *ReceiptPreview {
	cmds := printer.Commands(raw)
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.String())
	}
	return &ReceiptPreview{
		Text:      printer.PlainText(raw),
		RawBase64: base64.StdEncoding.EncodeToString(raw),
		Bytes:     len(raw),
		Commands:  names,
	}
}
