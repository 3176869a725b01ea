package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classbridge/qbank-backend/internal/model"
	"github.com/classbridge/qbank-backend/internal/repository"
	"github.com/classbridge/qbank-backend/internal/response"
	"github.com/classbridge/qbank-backend/internal/service"
	"github.com/classbridge/qbank-backend/internal/validator"
)

// QuestionHandler handles question bank and question management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// failDomain maps domain errors onto the response envelope. Validation
// errors carry their full field map so the console can highlight every
// failing field at once.
func failDomain(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.FieldMap())
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrDuplicateQuestion):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateText)
	case errors.Is(err, model.ErrNoTypes):
		response.Fail(c, http.StatusBadRequest, response.ErrEmptyTypeSet)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ─── Question banks ─────────────────────────────────────────────────────

// ListBanks godoc
// GET /api/v1/staff/banks
// Lists question banks with pagination and an optional name search.
func (h *QuestionHandler) ListBanks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	banks, pagination, err := h.questionService.ListBanks(c.Request.Context(), page, perPage, search)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"banks": banks}, pagination)
}

// GetBank godoc
// GET /api/v1/staff/banks/:id
func (h *QuestionHandler) GetBank(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bank, err := h.questionService.GetBank(c.Request.Context(), bankID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bank": bank})
}

// CreateBank godoc
// POST /api/v1/staff/banks
func (h *QuestionHandler) CreateBank(c *gin.Context) {
	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank := &model.QuestionBank{
		Name:         req.Name,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	}
	if err := h.questionService.CreateBank(c.Request.Context(), bank); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"bank": bank})
}

// UpdateBank godoc
// PUT /api/v1/staff/banks/:id
func (h *QuestionHandler) UpdateBank(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank := &model.QuestionBank{
		ID:           bankID,
		Name:         req.Name,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	}
	if err := h.questionService.UpdateBank(c.Request.Context(), bank); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bank": bank})
}

// DeleteBank godoc
// DELETE /api/v1/staff/banks/:id
func (h *QuestionHandler) DeleteBank(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteBank(c.Request.Context(), bankID); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "bank deleted"})
}

// ─── Questions ──────────────────────────────────────────────────────────

// ListQuestions godoc
// GET /api/v1/staff/banks/:id/questions
// Lists all questions in a bank with their derived correct answers.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.questionService.ListByBank(c.Request.Context(), bankID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []service.QuestionView{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetQuestion godoc
// GET /api/v1/staff/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), id)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// CreateQuestion godoc
// POST /api/v1/staff/questions
// Creates a question. questionTypes is always an array, one entry or many;
// every rule violation in the payload is reported in a single response.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var payload model.QuestionPayload
	if fields := validator.Bind(c, &payload); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), &payload)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PATCH /api/v1/staff/questions/:id
// Applies a partial update; the merged question is re-validated as a whole.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var patch model.QuestionUpdatePayload
	if fields := validator.Bind(c, &patch); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), id, &patch)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/staff/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), id); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}
