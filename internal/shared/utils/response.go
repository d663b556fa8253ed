package utils

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/shared/errors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResetsOnUpgrade marks a denial that no amount of waiting clears.
const ResetsOnUpgrade = "upgrade"

// UsageDenial is the body of a denied feature request. Lifetime allowances
// never reset, so their denials carry Resets instead of ResetAt.
type UsageDenial struct {
	Allowed   bool       `json:"allowed"`
	Reason    string     `json:"reason"`
	Limit     int        `json:"limit"`
	Remaining int        `json:"remaining"`
	UsedCount *int64     `json:"usedCount,omitempty"`
	ResetAt   *time.Time `json:"resetAt,omitempty"`
	Resets    string     `json:"resets,omitempty"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ErrorResponse sends an error response with custom status code and message
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: "error", Message: message},
	})
}

// ErrorResponseWithError sends an error response based on error type.
// Errors that are not AppErrors never leak their text to the client.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Error: &ErrorInfo{
				Type:    string(errors.ErrorTypeInternal),
				Message: "Internal server error occurred",
			},
		})
		return
	}

	c.JSON(appErr.Code, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

// SetRateLimitHeaders writes the X-RateLimit-* headers for a decision.
func SetRateLimitHeaders(c *gin.Context, limit, remaining int, resetAt time.Time) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

// RateLimitedResponse sends a 429 with the structured deny body.
func RateLimitedResponse(c *gin.Context, denial UsageDenial, now time.Time) {
	if denial.ResetAt != nil {
		SetRateLimitHeaders(c, denial.Limit, denial.Remaining, *denial.ResetAt)

		retryAfter := int(math.Ceil(denial.ResetAt.Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}

	denial.Allowed = false
	c.JSON(http.StatusTooManyRequests, APIResponse{
		Success: false,
		Data:    denial,
		Error: &ErrorInfo{
			Type:    string(errors.ErrorTypeRateLimited),
			Message: "usage limit reached",
		},
	})
}

// AllowanceExhaustedResponse sends a 402: the plan's one-shot grant is
// spent and only an upgrade helps. The body has no resetAt and says
// resets "upgrade".
func AllowanceExhaustedResponse(c *gin.Context, denial UsageDenial) {
	denial.Allowed = false
	denial.ResetAt = nil
	denial.Resets = ResetsOnUpgrade
	c.JSON(http.StatusPaymentRequired, APIResponse{
		Success: false,
		Data:    denial,
		Error: &ErrorInfo{
			Type:    string(errors.ErrorTypeAllowanceExhausted),
			Message: "plan allowance used up",
		},
	})
}
