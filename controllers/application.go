package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"loan-origination-api/config"
	"loan-origination-api/middleware"
	"loan-origination-api/models"
	"loan-origination-api/services"
)

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return id, true
}

// GetApplications returns the tenant's applications. Staff without the
// view-all capability only see the ones assigned to them.
func GetApplications(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	actor := middleware.Actor(c)

	var applications []models.Application
	query := config.DB.Preload("Applicant").Preload("Product").Preload("Assignee").
		Where("applications.tenant_id = ?", tenantID)

	if !services.ActorCan(actor, services.CapabilityViewAll) {
		query = query.Where("assigned_to = ?", actor.UserID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if assigned := c.Query("assigned_to"); assigned != "" {
		query = query.Where("assigned_to = ?", assigned)
	}
	if applicant := c.Query("applicant_id"); applicant != "" {
		query = query.Where("applicant_id = ?", applicant)
	}

	if err := query.Order("application_id DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

// GetApplication returns single application by ID
func GetApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tenantID := middleware.TenantID(c)

	var application models.Application
	if err := config.DB.Preload("Applicant").Preload("Product").Preload("Assignee").
		Where("application_id = ? AND tenant_id = ?", id, tenantID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application":      application,
		"allowed_statuses": services.AllowedTargets(application.Status),
	})
}

// GetApplicationTimeline renders the application's event log
func GetApplicationTimeline(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	entries, err := services.ApplicationTimeline(middleware.TenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timeline": entries,
		"total":    len(entries),
	})
}

// ChangeApplicationStatus applies a status transition
func ChangeApplicationStatus(c *gin.Context) {
	type ChangeStatusRequest struct {
		Status                string `json:"status" binding:"required"`
		Reason                string `json:"reason"`
		DisbursementReference string `json:"disbursement_reference"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := services.ChangeApplicationStatus(
		middleware.TenantID(c), id,
		models.ApplicationStatus(req.Status), req.Reason, req.DisbursementReference,
		middleware.Actor(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Status updated successfully",
		"application": app,
	})
}

// CounterOfferApplication records a counter-offer
func CounterOfferApplication(c *gin.Context) {
	type CounterOfferRequest struct {
		Amount     decimal.Decimal `json:"amount" binding:"required"`
		TermMonths int             `json:"term_months" binding:"required"`
		Rate       decimal.Decimal `json:"rate" binding:"required"`
		Frequency  string          `json:"frequency" binding:"required"`
		Reason     string          `json:"reason"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := services.CounterOfferApplication(
		middleware.TenantID(c), id,
		req.Amount, req.Rate, req.TermMonths, req.Frequency, req.Reason,
		middleware.Actor(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Counter-offer recorded",
		"application": app,
	})
}

// AssignApplication sets the assigned reviewer
func AssignApplication(c *gin.Context) {
	type AssignRequest struct {
		ReviewerID int `json:"reviewer_id" binding:"required"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := services.AssignApplication(middleware.TenantID(c), id, req.ReviewerID, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application assigned",
		"application": app,
	})
}

// AddApplicationNote appends a note to the event log
func AddApplicationNote(c *gin.Context) {
	type NoteRequest struct {
		Note string `json:"note" binding:"required"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.AddApplicationNote(middleware.TenantID(c), id, req.Note, middleware.Actor(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note added"})
}

// GetLoanProducts returns the tenant's active product catalog
func GetLoanProducts(c *gin.Context) {
	products, err := services.GetLoanProducts(middleware.TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}
