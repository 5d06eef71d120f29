package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"voicebox/internal/domain" // Error kinds

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusOf maps an error kind to its HTTP status
func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError // UploadFailed and anything unclassified
	}
}

// respondError writes {message} with the status of the error kind. Internals never reach the client.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	msg := "Server error" // Stable message for unclassified errors
	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		msg = de.Message
	}
	if kind == domain.KindInternal || kind == domain.KindUploadFailed {
		// Log the error with context
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err.Error(),
		}).Error("Request failed")
	}
	c.JSON(statusOf(kind), gin.H{"message": msg})
}
