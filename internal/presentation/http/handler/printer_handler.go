package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/star-temple/starprint/internal/application/service"
	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/internal/presentation/http/dto/request"
	"github.com/star-temple/starprint/internal/presentation/http/dto/response"
	"github.com/star-temple/starprint/pkg/apperror"
	"github.com/star-temple/starprint/pkg/printer"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// Preview encodes a receipt and returns it without printing.
func (h *PrinterHandler) Preview(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	data, seva, lang := req.ToEntities()
	preview := h.printerService.Preview(data, seva, lang)
	response.OK(c, "Receipt preview generated", gin.H{
		"receipt": data,
		"preview": preview,
	})
}

// PrintReceipt encodes a receipt and sends it to the printer.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	data, seva, lang := req.ToEntities()
	result, err := h.printerService.PrintReceipt(c.Request.Context(), GetStation(c), data, seva, lang)
	h.respondPrint(c, "Receipt sent to printer", result, err)
}

// ReprintTransaction prints the receipt of a stored transaction again.
func (h *PrinterHandler) ReprintTransaction(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		response.Error(c, apperror.NewBadRequestError("Invalid transaction ID"))
		return
	}

	var q request.ReprintQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.printerService.ReprintTransaction(c.Request.Context(), GetStation(c), id, entity.ParseLanguage(q.Lang))
	h.respondPrint(c, "Receipt reprinted", result, err)
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	result, err := h.printerService.TestPrint(c.Request.Context(), GetStation(c))
	h.respondPrint(c, "Test page sent to printer", result, err)
}

// ListJobs returns the print job log.
func (h *PrinterHandler) ListJobs(c *gin.Context) {
	var q request.ListPrintJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.printerService.ListJobs(c.Request.Context(), q.ToFilter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Print jobs retrieved", result)
}

// respondPrint reports a print outcome. When the receipt was built but the
// printer could not take it, the receipt and preview still go back to the
// counter with a 503 so the clerk can retry.
func (h *PrinterHandler) respondPrint(c *gin.Context, message string, result *service.PrintResult, err error) {
	if err == nil {
		response.OK(c, message, result)
		return
	}
	if result == nil {
		response.Error(c, err)
		return
	}

	warning := err.Error()
	if errors.Is(err, printer.ErrBridgeUnreachable) {
		warning = apperror.ErrPrinterUnavailable.Message
	}
	response.ErrorWithData(c, http.StatusServiceUnavailable, "Receipt generated but printing failed", gin.H{
		"job":     result.Job,
		"receipt": result.Receipt,
		"preview": result.Preview,
		"warning": warning,
	})
}
