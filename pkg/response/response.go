package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Msg is the plain message envelope used for errors and status-only replies.
type Msg struct {
	Message string `json:"message"`
}

// Error writes a message envelope with the given status code.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Msg{Message: message})
}

// InternalError hides the underlying error from the caller. The cause is
// expected to have been logged with enough context for reconciliation.
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Msg{Message: "server error"})
}
