package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/middleware"
	"budgettracker/internal/money"
	"budgettracker/internal/services"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, apperrors.ErrUnauthorized
	}
	id, ok := userID.(uint)
	if !ok || id == 0 {
		return 0, apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// bindFilter reads the shared filter query parameters.
func bindFilter(c *gin.Context, now time.Time) services.Filter {
	var params services.FilterParams
	// Unparsable values fall back to the current month inside ResolveFilter.
	_ = c.ShouldBindQuery(&params)
	return services.ResolveFilter(params, now)
}

// bindTransactionInput binds the transaction form and maps validator
// failures onto the same errors the service would return.
func bindTransactionInput(c *gin.Context) (services.TransactionInput, error) {
	var in services.TransactionInput
	err := c.ShouldBind(&in)
	if err == nil {
		return in, nil
	}

	if in.Amount != "" {
		if _, perr := money.ParseCents(in.Amount); perr != nil {
			return in, apperrors.Wrap(apperrors.ErrInvalidAmount, perr)
		}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "tx_kind":
			return in, apperrors.ErrInvalidKind
		case "iso_date":
			return in, apperrors.ErrInvalidDate
		}
	}
	return in, apperrors.Wrap(apperrors.ErrInvalidInput, err)
}

// monthURL is the dashboard URL for a calendar month.
func monthURL(year, month int) string {
	return fmt.Sprintf("/?year=%d&month=%d", year, month)
}

// filterURL is the dashboard URL that reproduces f.
func filterURL(f services.Filter) string {
	return "/?" + f.Query().Encode()
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil && appErr.IsInternal() {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"request_id", middleware.GetRequestID(c),
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", middleware.GetRequestID(c),
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// failPage is the HTML counterpart of respondWithError. Validation, conflict
// and not-found outcomes become a flash message and a redirect;
// auth outcomes send the browser to the login page; anything else is logged
// and rendered as the 500 page.
func failPage(c *gin.Context, err error, fallback string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && !appErr.IsInternal() {
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrSessionExpired):
			addFlash(c, flashWarning, appErr.Message)
			c.Redirect(http.StatusFound, middleware.LoginPath)
		case appErr.StatusCode == http.StatusNotFound:
			addFlash(c, flashWarning, appErr.Message)
			c.Redirect(http.StatusFound, "/")
		case appErr.StatusCode == http.StatusConflict:
			addFlash(c, flashWarning, appErr.Message)
			c.Redirect(http.StatusFound, fallback)
		default:
			addFlash(c, flashDanger, appErr.Message)
			c.Redirect(http.StatusFound, fallback)
		}
		return
	}

	logger.Get().Errorw("request failed",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", middleware.GetRequestID(c),
	)
	middleware.RenderError(c, http.StatusInternalServerError,
		apperrors.ErrInternalServer.Code, apperrors.ErrInternalServer.Message)
}
