package middleware

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

const (
	HeaderAPIVersion = "X-API-Version"

	CurrentAPIVersion = 1
)

var vendorMediaType = regexp.MustCompile(`application/vnd\.applytrack\.v(\d+)\+json`)

// APIVersion pins every /api/v1 response to the current version. A client
// that explicitly asks for another version, by header or vendor media type,
// gets a 400 instead of a silently different contract.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		requested, explicit := requestedAPIVersion(c)
		if explicit && requested != CurrentAPIVersion {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError(
				"unsupported API version",
				fmt.Sprintf("requested %d, supported %d", requested, CurrentAPIVersion),
			))
			c.Abort()
			return
		}
		c.Header(HeaderAPIVersion, strconv.Itoa(CurrentAPIVersion))
		c.Next()
	}
}

// requestedAPIVersion reports -1 for a malformed explicit header.
func requestedAPIVersion(c *gin.Context) (int, bool) {
	if h := c.GetHeader(HeaderAPIVersion); h != "" {
		v, err := strconv.Atoi(h)
		if err != nil {
			return -1, true
		}
		return v, true
	}
	if m := vendorMediaType.FindStringSubmatch(c.GetHeader("Accept")); len(m) == 2 {
		v, _ := strconv.Atoi(m[1])
		return v, true
	}
	return 0, false
}
