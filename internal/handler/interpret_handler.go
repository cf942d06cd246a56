package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docextract/internal/interpreter"
	"docextract/internal/metrics"
)

// InterpretHandler exposes the response interpreter without a conversation.
type InterpretHandler struct{}

// NewInterpretHandler creates a new InterpretHandler.
func NewInterpretHandler() *InterpretHandler {
	return &InterpretHandler{}
}

type interpretResponse struct {
	Fields *interpreter.FieldMap  `json:"fields"`
	Rows   []interpreter.TableRow `json:"rows"`
	Source interpreter.Source     `json:"source"`
}

// Interpret handles POST /api/v1/interpret
// @Summary Interpret model text
// @Description Convert free-text model output into fields and table rows
// @Tags interpret
// @Accept json
// @Produce json
// @Param body body object true "Text to interpret, e.g. {\"text\": \"Invoice Number: INV-1\"}"
// @Success 200 {object} APIResponse{data=interpretResponse}
// @Failure 400 {object} APIResponse "Missing text"
// @Router /interpret [post]
func (h *InterpretHandler) Interpret(c *gin.Context) {
	var req struct {
		Text *string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}

	interp := interpreter.Interpret(*req.Text)
	metrics.Interpretations.WithLabelValues(string(interp.Source)).Inc()

	RespondOK(c, interpretResponse{
		Fields: interp.Fields,
		Rows:   interpreter.Project(interp.Fields, *req.Text),
		Source: interp.Source,
	})
}
