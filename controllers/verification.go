package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-origination-api/middleware"
	"loan-origination-api/services"
)

// GetVerificationState returns the derived per-field verification state
func GetVerificationState(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	states, err := services.ApplicantVerificationState(middleware.TenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verifications": states,
		"total":         len(states),
	})
}

// RecordFieldVerification applies one ledger action to an applicant field
func RecordFieldVerification(c *gin.Context) {
	type VerificationRequest struct {
		Field           string `json:"field" binding:"required"`
		Action          string `json:"action" binding:"required"`
		Method          string `json:"method" binding:"required"`
		Notes           string `json:"notes"`
		RejectionReason string `json:"rejection_reason"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	record, err := services.VerifyApplicantField(
		middleware.TenantID(c), id,
		req.Field, req.Action, req.Method, req.Notes, req.RejectionReason,
		middleware.Actor(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Verification recorded",
		"verification": record,
	})
}

// VerifyReference records the outcome of a reference call
func VerifyReference(c *gin.Context) {
	type VerifyReferenceRequest struct {
		Result string `json:"result" binding:"required"`
		Notes  string `json:"notes"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req VerifyReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	ref, err := services.VerifyApplicantReference(middleware.TenantID(c), id, req.Result, req.Notes, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Reference updated",
		"reference": ref,
	})
}

// VerifyBankAccount marks a bank account verified
func VerifyBankAccount(c *gin.Context) {
	type VerifyBankAccountRequest struct {
		Method string `json:"method" binding:"required"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req VerifyBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := services.VerifyApplicantBankAccount(middleware.TenantID(c), id, req.Method, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bank account verified",
		"account": account,
	})
}

// UnverifyBankAccount reverts a bank account to unverified
func UnverifyBankAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	account, err := services.UnverifyApplicantBankAccount(middleware.TenantID(c), id, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bank account verification reverted",
		"account": account,
	})
}
