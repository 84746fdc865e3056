package controller

import (
	"errors"
	"net/http"

	"github.com/foodmarket/provision-backend/internal/app/service"
	apperrors "github.com/foodmarket/provision-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

type ProvisionController struct {
	provisionService service.ProvisionService
}

func NewProvisionController(provisionService service.ProvisionService) *ProvisionController {
	return &ProvisionController{provisionService: provisionService}
}

// ListProvisions returns recorded provisions oldest first
// GET /api/v1/provisions?quarter=&customer_id=&from=&to=
func (ctrl *ProvisionController) ListProvisions(c *gin.Context) {
	provisions, err := ctrl.provisionService.ListProvisions(c.Request.Context(), service.ProvisionQuery{
		Quarter:    c.Query("quarter"),
		CustomerID: c.Query("customer_id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	})
	if err != nil {
		respondQueryError(c, err, "list provisions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provisions": provisions,
		"count":      len(provisions),
	})
}

// GetProvision returns one provision record
// GET /api/v1/provisions/:id
func (ctrl *ProvisionController) GetProvision(c *gin.Context) {
	provision, err := ctrl.provisionService.GetProvisionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProvisionNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "제공 기록을 찾을 수 없습니다")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get provision")
		return
	}
	c.JSON(http.StatusOK, gin.H{"provision": provision})
}

// respondQueryError maps malformed quarter or date filters to 400.
func respondQueryError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrInvalidQuarter):
		apperrors.BadRequest(c, apperrors.StatsInvalidQuarter, "분기 형식이 올바르지 않습니다 (예: 2024-Q1)")
	case errors.Is(err, service.ErrInvalidDate):
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "날짜 형식이 올바르지 않습니다 (예: 2024-04-15)")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
