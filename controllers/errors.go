package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-origination-api/services"
)

// respondError maps service error kinds onto the HTTP contract. Anything
// without a kind is an internal failure: logged, never leaked.
func respondError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case services.KindPermissionDenied:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.KindInvalidState, services.KindInvalidTransition:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.KindConcurrentModification:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
