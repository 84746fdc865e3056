package controller

import (
	"errors"
	"net/http"

	"github.com/foodmarket/provision-backend/internal/app/service"
	apperrors "github.com/foodmarket/provision-backend/internal/errors"
	"github.com/foodmarket/provision-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	customerService service.CustomerService
}

func NewCustomerController(customerService service.CustomerService) *CustomerController {
	return &CustomerController{customerService: customerService}
}

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Birth   string `json:"birth"`
	Gender  string `json:"gender"`
	Status  string `json:"status"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Note    string `json:"note"`
}

func (r CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		Name:    r.Name,
		Birth:   r.Birth,
		Gender:  r.Gender,
		Status:  r.Status,
		Address: r.Address,
		Phone:   r.Phone,
		Note:    r.Note,
	}
}

// ListCustomers returns all customers, or the name matches of ?q=
// GET /api/v1/customers
func (ctrl *CustomerController) ListCustomers(c *gin.Context) {
	customers, err := ctrl.customerService.ListCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"count":     len(customers),
	})
}

// GetCustomer returns one customer
// GET /api/v1/customers/:id
func (ctrl *CustomerController) GetCustomer(c *gin.Context) {
	customer, err := ctrl.customerService.GetCustomerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err, "get customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// CreateCustomer registers a customer
// POST /api/v1/customers
func (ctrl *CustomerController) CreateCustomer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid customer request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BindError(c, err)
		return
	}

	customer, err := ctrl.customerService.CreateCustomer(c.Request.Context(), req.input())
	if err != nil {
		ctrl.respondError(c, err, "create customer")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// UpdateCustomer edits the profile of a customer
// PUT /api/v1/customers/:id
func (ctrl *CustomerController) UpdateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BindError(c, err)
		return
	}

	customer, err := ctrl.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		ctrl.respondError(c, err, "update customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// DeleteCustomer removes a customer
// DELETE /api/v1/customers/:id
func (ctrl *CustomerController) DeleteCustomer(c *gin.Context) {
	if err := ctrl.customerService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		ctrl.respondError(c, err, "delete customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

func (ctrl *CustomerController) respondError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		apperrors.NotFound(c, apperrors.CustomerNotFound, "이용자를 찾을 수 없습니다")
	case errors.Is(err, service.ErrCustomerNameNeeded):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "이름은 필수 항목입니다")
	default:
		middleware.GetLoggerFromContext(c).Error("Customer request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
