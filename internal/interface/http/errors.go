package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory/internal/domain/apperror"
	"github.com/oksasatya/user-directory/pkg/response"
)

// writeError renders err with the status its kind maps to.
// Unclassified errors are logged and reported without their cause.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, message, details := resolveError(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("unhandled error")
	}
	response.Error(c, status, "", message, details)
}

func resolveError(err error) (int, string, interface{}) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "internal server error", nil
	}
	switch appErr.Kind {
	case apperror.KindValidation:
		if len(appErr.Details) > 0 {
			return http.StatusUnprocessableEntity, appErr.Message, appErr.Details
		}
		return http.StatusUnprocessableEntity, appErr.Message, nil
	case apperror.KindConflict:
		return http.StatusConflict, appErr.Message, map[string]string{appErr.Field: "already in use"}
	case apperror.KindNotFound:
		return http.StatusNotFound, appErr.Message, nil
	default:
		return http.StatusInternalServerError, "internal server error", nil
	}
}
