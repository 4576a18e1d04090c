package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loan-origination-api/config"
	"loan-origination-api/middleware"
	"loan-origination-api/models"
	"loan-origination-api/services"
)

func uploadPath() string {
	path := os.Getenv("UPLOAD_PATH")
	if path == "" {
		path = "./uploads"
	}
	return path
}

// UploadApplicationDocument stores an uploaded file and its document row.
// An optional "metadata" form field carries the KYC callback payload as JSON.
func UploadApplicationDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	docType := c.PostForm("document_type")
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	metadata := map[string]interface{}{}
	if raw := c.PostForm("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid metadata JSON"})
			return
		}
	}

	storedName := uuid.New().String() + filepath.Ext(file.Filename)
	storedPath := filepath.Join(uploadPath(), storedName)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	doc, err := services.UploadApplicationDocument(
		middleware.TenantID(c), id,
		docType, file.Filename, storedPath, file.Header.Get("Content-Type"), file.Size,
		metadata, middleware.Actor(c),
	)
	if err != nil {
		os.Remove(storedPath)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// GetApplicationDocuments lists an application's documents
func GetApplicationDocuments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tenantID := middleware.TenantID(c)

	var application models.Application
	if err := config.DB.Where("application_id = ? AND tenant_id = ?", id, tenantID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var documents []models.Document
	if err := config.DB.Preload("Reviewer").
		Where("application_id = ? AND tenant_id = ?", id, tenantID).
		Order("document_id").
		Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
		"total":     len(documents),
	})
}

// ApproveDocument marks a pending document approved
func ApproveDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	doc, err := services.ApproveApplicationDocument(middleware.TenantID(c), id, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document approved",
		"document": doc,
	})
}

// RejectDocument marks a pending document rejected
func RejectDocument(c *gin.Context) {
	type RejectRequest struct {
		Reason  string `json:"reason" binding:"required"`
		Comment string `json:"comment"`
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := services.RejectApplicationDocument(middleware.TenantID(c), id, req.Reason, req.Comment, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document rejected",
		"document": doc,
	})
}

// UnapproveDocument resets a reviewed document to pending
func UnapproveDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	doc, err := services.UnapproveApplicationDocument(middleware.TenantID(c), id, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document reset to pending",
		"document": doc,
	})
}

// GetDocumentURL returns a short-lived signed URL for one document
func GetDocumentURL(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tenantID := middleware.TenantID(c)

	var doc models.Document
	if err := config.DB.Where("document_id = ? AND tenant_id = ?", id, tenantID).
		First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	token, expiry, err := services.DocumentAccessToken(&doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign document URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        fmt.Sprintf("/api/v1/documents/view?token=%s", token),
		"expires_at": expiry,
	})
}

// ViewDocument serves a document through its signed token
func ViewDocument(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	documentID, tenantID, err := services.ParseDocumentAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	var doc models.Document
	if err := config.DB.Where("document_id = ? AND tenant_id = ?", documentID, tenantID).
		First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.FileAttachment(doc.StoredPath, doc.OriginalName)
}
