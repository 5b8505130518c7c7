// Package controllers exposes the cart and checkout engine over HTTP for
// the storefront UI. Controllers stay thin: translate requests, call the
// engine, map the error taxonomy onto statuses.
package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
)

// respondError maps an application error onto the wire: the taxonomy's
// HTTP status plus the itemized field violations when there are any.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		body := gin.H{"error": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		if appErr.Attempts > 0 {
			body["attempts"] = appErr.Attempts
		}
		c.JSON(status, body)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
