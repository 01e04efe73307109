package request

import (
	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/internal/domain/repository"
)

// ReceiptRequest carries the receipt fields as the counter UI sends them.
type ReceiptRequest struct {
	ReceiptNo     string   `json:"receipt_no" binding:"required"`
	Date          string   `json:"date" binding:"required"`
	DevoteeName   string   `json:"devotee_name" binding:"required_without=DevoteeNameEn"`
	DevoteeNameEn string   `json:"devotee_name_en"`
	Gothra        string   `json:"gothra"`
	Nakshatra     string   `json:"nakshatra"`
	AmountPaid    *float64 `json:"amount_paid" binding:"required,gte=0"`
}

// SevaRequest names the booked seva.
type SevaRequest struct {
	NameEng string `json:"name_eng" binding:"required"`
	NameKan string `json:"name_kan"`
}

// PrintReceiptRequest is the request body for printing or previewing a receipt.
type PrintReceiptRequest struct {
	Receipt ReceiptRequest `json:"receipt"`
	Seva    SevaRequest    `json:"seva"`
	Lang    string         `json:"lang" binding:"omitempty,oneof=EN KN"`
}

// ToEntities converts the request into the receipt model.
func (r *PrintReceiptRequest) ToEntities() (*entity.ReceiptData, *entity.SevaInfo, entity.Language) {
	data := &entity.ReceiptData{
		ReceiptNo:     r.Receipt.ReceiptNo,
		Date:          r.Receipt.Date,
		DevoteeName:   r.Receipt.DevoteeName,
		DevoteeNameEn: r.Receipt.DevoteeNameEn,
		Gothra:        r.Receipt.Gothra,
		Nakshatra:     r.Receipt.Nakshatra,
	}
	if r.Receipt.AmountPaid != nil {
		data.AmountPaid = *r.Receipt.AmountPaid
	}

	seva := &entity.SevaInfo{
		NameEng: r.Seva.NameEng,
		NameKan: r.Seva.NameKan,
	}

	return data, seva, entity.ParseLanguage(r.Lang)
}

// ReprintQuery holds the query parameters of a reprint.
type ReprintQuery struct {
	Lang string `form:"lang" binding:"omitempty,oneof=EN KN"`
}

// ListPrintJobsQuery holds the query parameters of the job log.
type ListPrintJobsQuery struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Station string `form:"station"`
	Status  string `form:"status" binding:"omitempty,oneof=sent failed"`
}

// ToFilter converts the query into repository filter params.
func (q *ListPrintJobsQuery) ToFilter() *repository.PrintJobFilterParams {
	f := &repository.PrintJobFilterParams{
		Station: q.Station,
		Status:  entity.PrintJobStatus(q.Status),
	}
	f.Page = q.Page
	f.PerPage = q.PerPage
	f.Validate()
	return f
}
