package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/xuri/excelize/v2"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/config"
	"github.com/macworldgithub/westside-backend/internal/events"
	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/storage"
)

const pdfRenderTimeout = 60 * time.Second

type reportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	storage   storage.Storage
	publisher events.EventPublisher
	smtp      config.SMTPConfig
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, store storage.Storage, publisher events.EventPublisher, smtp config.SMTPConfig) ReportService {
	return &reportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		storage:   store,
		publisher: publisher,
		smtp:      smtp,
	}
}

// ===== DATA ASSEMBLY =====

func (s *reportService) BuildReportData(ctx context.Context, workOrderID uint) (*models.ReportData, error) {
	order, err := s.repo.WorkOrder().GetByIDWithDetails(ctx, s.db, workOrderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}

	data := &models.ReportData{
		WorkOrderID:  order.ID,
		OwnerName:    order.OwnerName,
		OwnerEmail:   order.OwnerEmail,
		PhoneNumber:  order.PhoneNumber,
		CarName:      order.Car.DisplayName(),
		CarImageB64:  s.inlineImage(ctx, order.Car.ImageKey),
		Registration: order.Car.RegistrationNo,
		HeadMechanic: order.HeadMechanic,
		Status:       order.Status,
		StartDate:    order.StartDate.Format("2006-01-02"),
		GeneratedAt:  time.Now().UTC(),
	}

	if order.Address != nil {
		data.Address = *order.Address
	}
	if order.EndDate != nil {
		data.EndDate = order.EndDate.Format("2006-01-02")
	}

	for _, repair := range order.Repairs {
		item := models.ReportRepairItem{
			PartName:       repair.PartName,
			MechanicName:   repair.MechanicName,
			Price:          repair.Price,
			BeforeImageB64: s.inlineImage(ctx, repair.BeforeImageKey),
			AfterImageB64:  s.inlineImage(ctx, repair.AfterImageKey),
		}
		if repair.FinishDate != nil {
			item.FinishDate = repair.FinishDate.Format("2006-01-02")
		}
		if repair.Notes != nil {
			item.Notes = *repair.Notes
		}

		data.Repairs = append(data.Repairs, item)
		data.TotalPrice += repair.Price
	}

	return data, nil
}

// inlineImage fetches a stored photo and encodes it for embedding in the
// report. A missing or unreadable object yields an empty string so one
// bad image never blocks the report.
func (s *reportService) inlineImage(ctx context.Context, key *string) string {
	if key == nil || *key == "" {
		return ""
	}

	data, err := s.storage.Download(ctx, *key)
	if err != nil {
		s.logger.Error("Failed to fetch repair image for report", "key", *key, "error", err)
		return ""
	}

	return base64.StdEncoding.EncodeToString(data)
}

// ===== RENDERING =====

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 32px; color: #1a1a1a; }
  h1 { font-size: 22px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
  h2 { font-size: 16px; margin-top: 24px; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; font-size: 12px; text-align: left; vertical-align: top; }
  th { background: #f2f2f2; }
  .meta td { border: none; padding: 2px 8px 2px 0; }
  .total { font-weight: bold; }
  img.repair { max-width: 160px; max-height: 120px; display: block; }
  img.car { max-width: 280px; max-height: 180px; display: block; margin-top: 12px; }
</style>
</head>
<body>
<h1>Work Order #{{.WorkOrderID}} Report</h1>
<table class="meta">
  <tr><td>Customer</td><td>{{.OwnerName}} ({{.OwnerEmail}})</td></tr>
  <tr><td>Phone</td><td>{{.PhoneNumber}}</td></tr>
  {{if .Address}}<tr><td>Address</td><td>{{.Address}}</td></tr>{{end}}
  <tr><td>Vehicle</td><td>{{.CarName}} — {{.Registration}}</td></tr>
  {{if .HeadMechanic}}<tr><td>Head mechanic</td><td>{{.HeadMechanic}}</td></tr>{{end}}
  <tr><td>Status</td><td>{{.Status}}</td></tr>
  <tr><td>Start date</td><td>{{.StartDate}}</td></tr>
  {{if .EndDate}}<tr><td>End date</td><td>{{.EndDate}}</td></tr>{{end}}
</table>
{{if .CarImageB64}}<img class="car" src="data:image/jpeg;base64,{{.CarImageB64}}">{{end}}
<h2>Repairs</h2>
<table>
  <tr><th>Part</th><th>Mechanic</th><th>Price</th><th>Finished</th><th>Notes</th><th>Before</th><th>After</th></tr>
  {{range .Repairs}}
  <tr>
    <td>{{.PartName}}</td>
    <td>{{.MechanicName}}</td>
    <td>{{printf "%.2f" .Price}}</td>
    <td>{{.FinishDate}}</td>
    <td>{{.Notes}}</td>
    <td>{{if .BeforeImageB64}}<img class="repair" src="data:image/jpeg;base64,{{.BeforeImageB64}}">{{end}}</td>
    <td>{{if .AfterImageB64}}<img class="repair" src="data:image/jpeg;base64,{{.AfterImageB64}}">{{end}}</td>
  </tr>
  {{end}}
  <tr class="total"><td colspan="2">Total</td><td colspan="5">{{printf "%.2f" .TotalPrice}}</td></tr>
</table>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04 UTC"}}</p>
</body>
</html>`))

func (s *reportService) RenderPDF(ctx context.Context, data *models.ReportData) ([]byte, error) {
	var html bytes.Buffer
	if err := reportTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render report template: %w", err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, pdfRenderTimeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("data:text/html;charset=utf-8,"+url.PathEscape(html.String())),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// A4 portrait
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return pdf, nil
}

func (s *reportService) GeneratePDF(ctx context.Context, workOrderID uint, actorID uint) ([]byte, error) {
	if err := s.checkActor(ctx, workOrderID, actorID); err != nil {
		return nil, err
	}

	data, err := s.BuildReportData(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	return s.RenderPDF(ctx, data)
}

// ===== DELIVERY =====

func (s *reportService) SendEmail(ctx context.Context, workOrderID uint, recipient string, actorID uint) error {
	s.logger.Info("Sending work order report", "work_order_id", workOrderID, "actor_id", actorID)

	if err := s.checkActor(ctx, workOrderID, actorID); err != nil {
		return err
	}

	data, err := s.BuildReportData(ctx, workOrderID)
	if err != nil {
		return err
	}

	if recipient == "" {
		recipient = data.OwnerEmail
	}

	pdf, err := s.RenderPDF(ctx, data)
	if err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", s.smtp.From)
	message.SetHeader("To", recipient)
	message.SetHeader("Subject", fmt.Sprintf("Work Order #%d Report", workOrderID))
	message.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nPlease find attached the repair report for work order #%d (%s).\n",
		data.OwnerName, workOrderID, data.CarName))
	message.Attach(
		fmt.Sprintf("work-order-%d-report.pdf", workOrderID),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
	)

	dialer := gomail.NewDialer(s.smtp.Host, s.smtp.Port, s.smtp.Username, s.smtp.Password)
	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	// Archive a copy of what was sent
	key, err := s.storage.Upload(ctx, storage.FolderReports,
		fmt.Sprintf("work-order-%d-report.pdf", workOrderID), bytes.NewReader(pdf), "application/pdf")
	if err != nil {
		s.logger.Error("Failed to archive report", "work_order_id", workOrderID, "error", err)
	} else {
		s.logger.Info("Report archived", "work_order_id", workOrderID, "key", key)
	}

	s.publishEvent(ctx, events.EventReportSent, map[string]interface{}{
		"work_order_id": workOrderID,
		"recipient":     recipient,
		"sent_by":       actorID,
	})

	s.logger.Info("Report sent", "work_order_id", workOrderID, "recipient", recipient)

	return nil
}

func (s *reportService) ExportXLSX(ctx context.Context, workOrderID uint, actorID uint) ([]byte, error) {
	if err := s.checkActor(ctx, workOrderID, actorID); err != nil {
		return nil, err
	}

	data, err := s.BuildReportData(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Repairs"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Part", "Mechanic", "Price", "Finish Date", "Notes"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, repair := range data.Repairs {
		values := []interface{}{repair.PartName, repair.MechanicName, repair.Price, repair.FinishDate, repair.Notes}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	totalRow := len(data.Repairs) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	f.SetCellValue(sheet, cell, "Total")
	cell, _ = excelize.CoordinatesToCellName(3, totalRow)
	f.SetCellValue(sheet, cell, data.TotalPrice)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *reportService) checkActor(ctx context.Context, workOrderID, actorID uint) error {
	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	order, err := s.repo.WorkOrder().GetByID(ctx, s.db, workOrderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrWorkOrderNotFound
		}
		return fmt.Errorf("failed to get work order: %w", err)
	}

	if !CanViewWorkOrder(actor, order) {
		return NewPermissionError(actorID, workOrderID, "report", "send", "not assigned to this order")
	}
	return nil
}

func (s *reportService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
