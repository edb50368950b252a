package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"rentdesk/internal/common"
	"rentdesk/internal/models"
	"rentdesk/internal/services"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

const (
	receiptBucket    = "rentdesk-receipts"
	receiptURLExpiry = time.Hour
)

// RentHandlers handles ledger generation, queries and payments.
type RentHandlers struct {
	ledgerService services.LedgerService
	minioSvc      services.MinioService
}

func NewRentHandlers(ledgerService services.LedgerService, minioSvc services.MinioService) *RentHandlers {
	return &RentHandlers{ledgerService: ledgerService, minioSvc: minioSvc}
}

// GenerateMonthlyRent handles POST /v1/rent/generate
func (h *RentHandlers) GenerateMonthlyRent(c echo.Context) error {
	var req struct {
		BuildingID *string `json:"building_id"`
		Year       int     `json:"year"`
		Month      int     `json:"month"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	var buildingID *uuid.UUID
	if req.BuildingID != nil && *req.BuildingID != "" {
		id, err := common.ValidateUUID(*req.BuildingID, "building_id")
		if err != nil {
			return common.SendError(c, err)
		}
		buildingID = &id
	}

	period := services.CurrentPeriod(time.Now())
	if req.Year != 0 && req.Month != 0 {
		period = services.Period{Year: req.Year, Month: req.Month}
	}

	created, err := h.ledgerService.GenerateMonthly(c.Request().Context(), period, buildingID)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, fmt.Sprintf("generated %d rent records", created), map[string]interface{}{"count": created})
}

// GetHistory handles GET /v1/rent/history
func (h *RentHandlers) GetHistory(c echo.Context) error {
	query := services.HistoryQuery{}

	if raw := c.QueryParam("room_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "room_id")
		if err != nil {
			return common.SendError(c, err)
		}
		query.RoomID = &id
	}
	if raw := c.QueryParam("building_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "building_id")
		if err != nil {
			return common.SendError(c, err)
		}
		query.BuildingID = &id
	}
	if raw := c.QueryParam("status"); raw != "" {
		query.Status = &raw
	}
	query.Page, _ = strconv.Atoi(c.QueryParam("page"))
	query.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	page, err := h.ledgerService.History(c.Request().Context(), query)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, page)
}

// GetStats handles GET /v1/rent/stats?building_id=
func (h *RentHandlers) GetStats(c echo.Context) error {
	buildingID, err := common.ValidateUUID(c.QueryParam("building_id"), "building_id")
	if err != nil {
		return common.SendError(c, err)
	}

	stats, err := h.ledgerService.Stats(c.Request().Context(), buildingID)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, stats)
}

// GetPendingRent handles GET /v1/rent/pending?building_id=
func (h *RentHandlers) GetPendingRent(c echo.Context) error {
	buildingID, err := common.ValidateUUID(c.QueryParam("building_id"), "building_id")
	if err != nil {
		return common.SendError(c, err)
	}

	items, err := h.ledgerService.PendingWithinWeek(c.Request().Context(), buildingID)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, items)
}

// MarkPaid handles POST /v1/rent/:id/paid
func (h *RentHandlers) MarkPaid(c echo.Context) error {
	recordID, err := common.ValidateUUID(c.Param("id"), "record_id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.ledgerService.MarkPaid(c.Request().Context(), recordID); err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "marked as paid", nil)
}

// GenerateReceipt handles POST /v1/rent/:id/receipt
// Renders a payment receipt PDF for a paid record, stores it and returns a
// presigned download URL.
func (h *RentHandlers) GenerateReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	recordID, err := common.ValidateUUID(c.Param("id"), "record_id")
	if err != nil {
		return common.SendError(c, err)
	}

	record, err := h.ledgerService.Record(ctx, recordID)
	if err != nil {
		return common.SendError(c, err)
	}
	if record.Status != models.RentStatusPaid {
		return common.SendFailure(c, common.CodeConflict, "receipt is only available for paid records")
	}

	pdfBytes, err := renderReceiptPDF(record)
	if err != nil {
		return common.SendFailure(c, common.CodeStorage, "failed to render receipt")
	}

	objectName := fmt.Sprintf("receipts/%s.pdf", record.ID)
	if err := h.minioSvc.Upload(ctx, receiptBucket, objectName, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return common.SendFailure(c, common.CodeStorage, "failed to store receipt")
	}

	url, err := h.minioSvc.GetPresignedURL(ctx, receiptBucket, objectName, receiptURLExpiry)
	if err != nil {
		return common.SendFailure(c, common.CodeStorage, "failed to sign receipt URL")
	}
	return common.SendOK(c, map[string]interface{}{"url": url})
}

func renderReceiptPDF(record *models.RentRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "RENT RECEIPT")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt Number: %s", record.ID.String()))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Billing Period: %04d-%02d", record.Year, record.Month))
	pdf.Ln(8)
	if record.PaidDate != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Paid On: %s", record.PaidDate.Format("02-Jan-2006")))
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	headers := []string{"Room", "Tenant", "Due Date", "Amount"}
	colWidths := []float64{40, 50, 40, 40}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	pdf.CellFormat(colWidths[0], 8, record.RoomNumber, "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[1], 8, record.TenantName, "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[2], 8, record.DueDate.Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", record.Amount), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Total Paid: %.2f", record.Amount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
