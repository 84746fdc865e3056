package controller

import (
	"fmt"
	"net/http"

	"github.com/foodmarket/provision-backend/internal/app/service"
	"github.com/foodmarket/provision-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type StatsController struct {
	statsService  service.StatsService
	reportService service.ReportService
}

func NewStatsController(statsService service.StatsService, reportService service.ReportService) *StatsController {
	return &StatsController{
		statsService:  statsService,
		reportService: reportService,
	}
}

// GetVisitStats ranks customers by visit days
// GET /api/v1/stats/visits?period=24-25
func (ctrl *StatsController) GetVisitStats(c *gin.Context) {
	stats, err := ctrl.statsService.VisitStats(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondQueryError(c, err, "visit stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetLifeLoveStats lists the customers flagged in a quarter
// GET /api/v1/stats/lifelove?quarter=2024-Q1
func (ctrl *StatsController) GetLifeLoveStats(c *gin.Context) {
	stats, err := ctrl.statsService.LifeLoveStats(c.Request.Context(), c.Query("quarter"))
	if err != nil {
		respondQueryError(c, err, "lifelove stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetDailyCounts counts provisions per day
// GET /api/v1/stats/daily?from=2024-04-01&to=2024-04-30
func (ctrl *StatsController) GetDailyCounts(c *gin.Context) {
	counts, err := ctrl.statsService.DailyCounts(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondQueryError(c, err, "daily stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"days":  counts,
		"count": len(counts),
	})
}

// ExportQuarter downloads a quarter's provisions as xlsx
// GET /api/v1/stats/export?quarter=2024-Q1
func (ctrl *StatsController) ExportQuarter(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	report, err := ctrl.reportService.ExportQuarter(c.Request.Context(), c.Query("quarter"))
	if err != nil {
		respondQueryError(c, err, "export quarter")
		return
	}

	log.Info("Quarter report exported", map[string]interface{}{
		"quarter": report.Quarter,
		"rows":    report.Rows,
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	c.Data(http.StatusOK, service.XLSXMimeType, report.Data)
}
