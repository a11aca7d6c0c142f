package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/storage"
)

func TestReportTemplate(t *testing.T) {
	data := &models.ReportData{
		WorkOrderID:  12,
		OwnerName:    "Jane Driver",
		OwnerEmail:   "jane@example.com",
		PhoneNumber:  "555-0101",
		CarName:      "Corolla GLi 2018",
		Registration: "ABC-123",
		HeadMechanic: "Marco",
		Status:       models.WorkOrderInProgress,
		StartDate:    "2025-02-01",
		Repairs: []models.ReportRepairItem{
			{PartName: "Brake pads", MechanicName: "Marco", Price: 120.5, FinishDate: "2025-02-03"},
			{PartName: "Oil filter", MechanicName: "Lena", Price: 19.99},
		},
		TotalPrice:  140.49,
		GeneratedAt: time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, data)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Work Order #12 Report")
	assert.Contains(t, html, "Jane Driver")
	assert.Contains(t, html, "Corolla GLi 2018")
	assert.Contains(t, html, "ABC-123")
	assert.Contains(t, html, "Brake pads")
	assert.Contains(t, html, "140.49")
	// No images were inlined, so no data URIs should appear.
	assert.NotContains(t, html, "data:image/jpeg")
}

func TestInlineImage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := storage.NewMockStorage()
	svc := &reportService{storage: store, logger: logger}

	ctx := context.Background()

	key, err := store.Upload(ctx, storage.FolderRepairImages, "before.jpg", strings.NewReader("jpegbytes"), "image/jpeg")
	require.NoError(t, err)

	encoded := svc.inlineImage(ctx, &key)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpegbytes")), encoded)

	// Unreadable objects degrade to an empty string instead of failing
	// the whole report.
	missing := "repairs/images/does-not-exist.jpg"
	assert.Equal(t, "", svc.inlineImage(ctx, &missing))
	assert.Equal(t, "", svc.inlineImage(ctx, nil))
}
