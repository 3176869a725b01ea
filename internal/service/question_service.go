package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classbridge/qbank-backend/internal/config"
	"github.com/classbridge/qbank-backend/internal/logger"
	"github.com/classbridge/qbank-backend/internal/model"
	"github.com/classbridge/qbank-backend/internal/repository"
	"github.com/classbridge/qbank-backend/internal/response"
)

// ErrDuplicateQuestion is returned when a create or update would give two
// questions identical text. Question text doubles as the bulk import
// duplicate key, so it stays unique across the bank.
var ErrDuplicateQuestion = errors.New("duplicate question text")

// QuestionView is a Question with its canonical correct answer projected
// in. The outer field shadows the stored scalar, so callers always see the
// derived value.
type QuestionView struct {
	model.Question
	CorrectAnswer model.Answer `json:"correctAnswer"`
}

// NewQuestionView derives the canonical answer for q.
func NewQuestionView(q model.Question) QuestionView {
	return QuestionView{Question: q, CorrectAnswer: DeriveCorrectAnswer(&q)}
}

// QuestionService owns question and question-bank business logic. Every
// create or update passes through ValidateQuestion before any persistence
// side effect; a question handed back to a caller always satisfies its own
// invariants.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// bankQuestionsTTL bounds how long a cached bank question list may serve
// reads. Writes invalidate eagerly; the TTL is the backstop.
const bankQuestionsTTL = 5 * time.Minute

// NewQuestionService creates a new QuestionService. rdb may be nil to run
// without the bank question list cache.
func NewQuestionService(questionRepo *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          logger.Component(log, "question_service"),
	}
}

// ─── Question banks ─────────────────────────────────────────────────────

// ListBanks retrieves question banks with pagination.
func (s *QuestionService) ListBanks(ctx context.Context, page, perPage int, search string) ([]model.QuestionBank, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	banks, total, err := s.questionRepo.ListBanks(ctx, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, nil, err
	}
	if banks == nil {
		banks = []model.QuestionBank{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return banks, pagination, nil
}

// GetBank retrieves a specific question bank.
func (s *QuestionService) GetBank(ctx context.Context, bankID uuid.UUID) (*model.QuestionBank, error) {
	return s.questionRepo.GetBank(ctx, bankID)
}

// CreateBank creates a new question bank.
func (s *QuestionService) CreateBank(ctx context.Context, bank *model.QuestionBank) error {
	return s.questionRepo.CreateBank(ctx, bank)
}

// UpdateBank updates a specific question bank.
func (s *QuestionService) UpdateBank(ctx context.Context, bank *model.QuestionBank) error {
	return s.questionRepo.UpdateBank(ctx, bank)
}

// DeleteBank deletes a specific question bank. Deleting a bank does not
// delete its questions; they keep existing with a cleared bank reference.
func (s *QuestionService) DeleteBank(ctx context.Context, bankID uuid.UUID) error {
	if err := s.questionRepo.DeleteBank(ctx, bankID); err != nil {
		return err
	}
	s.invalidateBankQuestions(ctx, &bankID)
	return nil
}

// ─── Questions ──────────────────────────────────────────────────────────

// ListByBank retrieves all questions in a bank, derived answers included.
// The list is served from the Redis cache when fresh; cache failures fall
// back to the database and are only logged.
func (s *QuestionService) ListByBank(ctx context.Context, bankID uuid.UUID) ([]QuestionView, error) {
	if views, ok := s.cachedBankQuestions(ctx, bankID); ok {
		return views, nil
	}

	questions, err := s.questionRepo.ListByBank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, NewQuestionView(q))
	}

	s.storeBankQuestions(ctx, bankID, views)
	return views, nil
}

func (s *QuestionService) cachedBankQuestions(ctx context.Context, bankID uuid.UUID) ([]QuestionView, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.BankQuestionsKey(bankID.String())).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn().Err(err).Msg("Bank questions cache read failed")
		}
		return nil, false
	}
	var views []QuestionView
	if err := json.Unmarshal([]byte(raw), &views); err != nil {
		s.log.Warn().Err(err).Msg("Bank questions cache entry corrupt")
		return nil, false
	}
	return views, true
}

func (s *QuestionService) storeBankQuestions(ctx context.Context, bankID uuid.UUID, views []QuestionView) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(views)
	if err != nil {
		return
	}
	key := config.CacheKey.BankQuestionsKey(bankID.String())
	if err := s.rdb.Set(ctx, key, raw, bankQuestionsTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Bank questions cache write failed")
	}
}

// invalidateBankQuestions drops the cached list for a bank after a write.
func (s *QuestionService) invalidateBankQuestions(ctx context.Context, bankID *uuid.UUID) {
	if s.rdb == nil || bankID == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.BankQuestionsKey(bankID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Bank questions cache invalidation failed")
	}
}

// GetQuestion retrieves one question with its derived answer.
func (s *QuestionService) GetQuestion(ctx context.Context, id uuid.UUID) (*QuestionView, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewQuestionView(*q)
	return &view, nil
}

// CreateQuestion validates the payload and persists the normalized
// question. A *ValidationError is returned for any rule violation; nothing
// is written in that case.
func (s *QuestionService) CreateQuestion(ctx context.Context, payload *model.QuestionPayload) (*QuestionView, error) {
	q, err := payload.ToQuestion()
	if err != nil {
		return nil, typeSetError(err)
	}

	if violations := ValidateQuestion(q); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	existing, err := s.questionRepo.FindIDByText(ctx, q.QuestionText)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateQuestion
	}

	if err := s.questionRepo.Insert(ctx, q); err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	s.invalidateBankQuestions(ctx, q.BankID)

	s.log.Info().
		Str("question_id", q.ID.String()).
		Int("types", q.Types.Len()).
		Msg("Question created")

	view := NewQuestionView(*q)
	return &view, nil
}

// UpdateQuestion merges a partial update into the stored question and
// re-validates the merged result as a whole before writing it back.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uuid.UUID, patch *model.QuestionUpdatePayload) (*QuestionView, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousBank := q.BankID

	if err := patch.ApplyTo(q); err != nil {
		return nil, typeSetError(err)
	}

	if violations := ValidateQuestion(q); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	// A text edit must not collide with another question.
	existing, err := s.questionRepo.FindIDByText(ctx, q.QuestionText)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup: %w", err)
	}
	if existing != nil && *existing != q.ID {
		return nil, ErrDuplicateQuestion
	}

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	s.invalidateBankQuestions(ctx, previousBank)
	if !sameBankID(previousBank, q.BankID) {
		s.invalidateBankQuestions(ctx, q.BankID)
	}

	view := NewQuestionView(*q)
	return &view, nil
}

// DeleteQuestion removes a question from storage.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateBankQuestions(ctx, q.BankID)
	return nil
}

// sameBankID reports whether two optional bank references point at the same
// bank by value.
func sameBankID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// typeSetError converts a type-set construction failure into a field
// violation on questionTypes so the caller sees one error shape.
func typeSetError(err error) error {
	var msg string
	switch {
	case errors.Is(err, model.ErrNoTypes):
		msg = "at least one question type is required"
	case errors.Is(err, model.ErrDuplicateType):
		msg = "question types must not repeat"
	default:
		msg = err.Error()
	}
	return &ValidationError{Violations: []FieldViolation{{Field: "questionTypes", Message: msg}}}
}
