package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/auth"
	"github.com/amrrdev/officetext/internal/invocation"
	"github.com/amrrdev/officetext/internal/service"
	"github.com/amrrdev/officetext/internal/status"
)

type DocumentHandler struct {
	documentService *service.Document
	invoker         *invocation.Invoker
	logger          *logrus.Entry
}

type fileRequest struct {
	FileName string `json:"file_name" binding:"required"`
}

func NewDocumentHandler(documentService *service.Document, invoker *invocation.Invoker, logger *logrus.Entry) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		invoker:         invoker,
		logger:          logger,
	}
}

// Invoke takes either invocation envelope and answers with the output
// envelope. Failures use the same envelope with the mapped status code.
func (h *DocumentHandler) Invoke(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, invocation.NewErrorResponse(http.StatusBadRequest, err))
		return
	}

	resp, err := h.invoker.Invoke(c.Request.Context(), raw)
	if err != nil {
		code := invocation.StatusCode(err)
		h.logFailure(c, err, code)
		c.JSON(code, invocation.NewErrorResponse(code, err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) Extract(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file_name is required",
		})
		return
	}

	result, err := h.documentService.Extract(c.Request.Context(), req.FileName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DocumentHandler) Status(c *gin.Context) {
	fileName := c.Query("file_name")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file_name is required",
		})
		return
	}

	st, err := h.documentService.Status(c.Request.Context(), fileName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

func (h *DocumentHandler) ListProcessed(c *gin.Context) {
	resp, err := h.documentService.ListProcessed(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) ListOriginals(c *gin.Context) {
	resp, err := h.documentService.ListOriginals(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) GetDownloadUrl(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file_name is required",
		})
		return
	}

	resp, err := h.documentService.GetDownloadUrl(c.Request.Context(), req.FileName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) Enqueue(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file_name is required",
		})
		return
	}

	resp, err := h.documentService.Enqueue(c.Request.Context(), req.FileName, auth.GetSubject(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (h *DocumentHandler) writeError(c *gin.Context, err error) {
	code := statusCode(err)
	h.logFailure(c, err, code)
	c.JSON(code, gin.H{
		"error": err.Error(),
	})
}

func (h *DocumentHandler) logFailure(c *gin.Context, err error, code int) {
	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": code,
	})
	if code >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, status.ErrNotFound), errors.Is(err, service.ErrNotProcessed):
		return http.StatusNotFound
	case errors.Is(err, status.ErrDisabled), errors.Is(err, service.ErrQueueDisabled):
		return http.StatusNotImplemented
	default:
		return invocation.StatusCode(err)
	}
}
