package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classbridge/qbank-backend/internal/model"
	"github.com/classbridge/qbank-backend/internal/response"
	"github.com/classbridge/qbank-backend/internal/service"
	"github.com/classbridge/qbank-backend/internal/validator"
)

// ImportHandler handles bulk question import endpoints: a synchronous
// variant for small batches and a Redis-queued variant for large ones.
type ImportHandler struct {
	imports *service.ImportService
	queue   *service.ImportQueue
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(imports *service.ImportService, queue *service.ImportQueue) *ImportHandler {
	return &ImportHandler{imports: imports, queue: queue}
}

// Import godoc
// POST /api/v1/staff/imports
// Reconciles the batch synchronously. One bad row never aborts the batch;
// the response carries a per-row result list aligned with the input plus
// derived aggregate counts.
func (h *ImportHandler) Import(c *gin.Context) {
	var req model.BulkImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.imports.Run(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMalformedCSV) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload, err.Error())
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ImportAsync godoc
// POST /api/v1/staff/imports/async
// Enqueues the batch for background reconciliation and returns a job id to
// poll.
func (h *ImportHandler) ImportAsync(c *gin.Context) {
	var req model.BulkImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	jobID, err := h.queue.Enqueue(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"jobId":  jobID.String(),
		"status": service.ImportJobPending,
	})
}

// GetImportJob godoc
// GET /api/v1/staff/imports/jobs/:id
// Returns the job state; a finished job includes the full import response.
func (h *ImportHandler) GetImportJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	job, err := h.queue.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"job": job})
}
