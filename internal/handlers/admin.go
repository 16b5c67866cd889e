package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger/internal/chat"
	"messenger/internal/console"
)

// AdminHandler runs operator console commands over HTTP.
type AdminHandler struct {
	operator console.Operator
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(operator console.Operator) *AdminHandler {
	return &AdminHandler{operator: operator}
}

type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

// RunCommand parses and executes one console command line.
func (h *AdminHandler) RunCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	cmd, err := console.Parse(req.Command)
	if err != nil {
		switch {
		case errors.Is(err, console.ErrHelp):
			c.JSON(http.StatusOK, gin.H{"message": console.Usage})
		case errors.Is(err, console.ErrExit), errors.Is(err, console.ErrEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "command not available over http"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	result, err := h.operator.Operate(c.Request.Context(), requestIDFromContext(c), cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "code": chat.Code(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrConflict), errors.Is(err, chat.ErrState):
		return http.StatusConflict
	case errors.Is(err, chat.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, chat.ErrAuth):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
