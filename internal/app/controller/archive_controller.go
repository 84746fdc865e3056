package controller

import (
	"context"
	"net/http"

	"github.com/foodmarket/provision-backend/internal/app/service"
	apperrors "github.com/foodmarket/provision-backend/internal/errors"
	"github.com/foodmarket/provision-backend/internal/storage"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ObjectUploader stores a rendered report and returns its URL.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type ArchiveController struct {
	reportService service.ReportService
	uploader      ObjectUploader
}

// NewArchiveController wires report archiving. A nil uploader answers 503.
func NewArchiveController(reportService service.ReportService, uploader ObjectUploader) *ArchiveController {
	return &ArchiveController{
		reportService: reportService,
		uploader:      uploader,
	}
}

// ArchiveQuarter renders a quarter report and stores it in object storage (Admin only)
// POST /api/v1/admin/reports/archive?quarter=2024-Q1
func (ctrl *ArchiveController) ArchiveQuarter(c *gin.Context) {
	if ctrl.uploader == nil {
		apperrors.ServiceUnavailable(c, "보고서 저장소가 설정되지 않았습니다")
		return
	}

	report, err := ctrl.reportService.ExportQuarter(c.Request.Context(), c.Query("quarter"))
	if err != nil {
		respondQueryError(c, err, "archive quarter")
		return
	}

	key := storage.ReportKey(report.Quarter)
	url, err := ctrl.uploader.Upload(c.Request.Context(), key, report.Data, service.XLSXMimeType)
	if err != nil {
		logger.Error("Failed to archive quarter report", err, map[string]interface{}{
			"quarter": report.Quarter,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "보고서 업로드에 실패했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quarter":  report.Quarter,
		"rows":     report.Rows,
		"key":      key,
		"file_url": url,
	})
}
