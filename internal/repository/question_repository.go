package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classbridge/qbank-backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// QuestionRepository handles question and question-bank data access.
// Type-specific substructures live in a single jsonb content column; the
// type set is a text[] preserving insertion order.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// questionContent is the jsonb shape of the type-specific substructures.
type questionContent struct {
	Options         []model.Option       `json:"options,omitempty"`
	CorrectAnswer   *string              `json:"correctAnswer,omitempty"`
	AcceptedAnswers []string             `json:"acceptedAnswers,omitempty"`
	SampleAnswer    *string              `json:"sampleAnswer,omitempty"`
	MatchingPairs   []model.MatchingPair `json:"matchingPairs,omitempty"`
	Distractors     []string             `json:"distractors,omitempty"`
	Flashcard       *model.FlashcardData `json:"flashcardData,omitempty"`
	Blanks          []model.Blank        `json:"blanks,omitempty"`
}

func contentOf(q *model.Question) questionContent {
	return questionContent{
		Options:         q.Options,
		CorrectAnswer:   q.CorrectAnswer,
		AcceptedAnswers: q.AcceptedAnswers,
		SampleAnswer:    q.SampleAnswer,
		MatchingPairs:   q.MatchingPairs,
		Distractors:     q.Distractors,
		Flashcard:       q.Flashcard,
		Blanks:          q.Blanks,
	}
}

func (c *questionContent) applyTo(q *model.Question) {
	q.Options = c.Options
	q.CorrectAnswer = c.CorrectAnswer
	q.AcceptedAnswers = c.AcceptedAnswers
	q.SampleAnswer = c.SampleAnswer
	q.MatchingPairs = c.MatchingPairs
	q.Distractors = c.Distractors
	q.Flashcard = c.Flashcard
	q.Blanks = c.Blanks
}

// ─── Question banks ─────────────────────────────────────────────────────

// ListBanks retrieves question banks with an optional name search.
func (r *QuestionRepository) ListBanks(ctx context.Context, limit, offset int, search string) ([]model.QuestionBank, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM question_banks
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`, search,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, department_id, name, description, created_at, updated_at
		 FROM question_banks
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, search, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		var b model.QuestionBank
		if err := rows.Scan(&b.ID, &b.DepartmentID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		banks = append(banks, b)
	}
	return banks, total, rows.Err()
}

// GetBank retrieves a single bank by id.
func (r *QuestionRepository) GetBank(ctx context.Context, bankID uuid.UUID) (*model.QuestionBank, error) {
	var b model.QuestionBank
	err := r.pool.QueryRow(ctx,
		`SELECT id, department_id, name, description, created_at, updated_at
		 FROM question_banks WHERE id = $1`, bankID,
	).Scan(&b.ID, &b.DepartmentID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBank inserts a new bank.
func (r *QuestionRepository) CreateBank(ctx context.Context, b *model.QuestionBank) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_banks (department_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		b.DepartmentID, b.Name, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// UpdateBank updates a bank's mutable fields.
func (r *QuestionRepository) UpdateBank(ctx context.Context, b *model.QuestionBank) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE question_banks
		 SET department_id = $2, name = $3, description = $4, updated_at = NOW()
		 WHERE id = $1`,
		b.ID, b.DepartmentID, b.Name, b.Description,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBank removes a bank. Its questions keep existing; the foreign key
// clears their bank reference.
func (r *QuestionRepository) DeleteBank(ctx context.Context, bankID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM question_banks WHERE id = $1`, bankID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Questions ──────────────────────────────────────────────────────────

const questionColumns = `id, bank_id, department_id, question_types, question_text,
	difficulty, tags, points, explanation, content, created_at, updated_at`

// ListByBank retrieves all questions in a bank, newest first.
func (r *QuestionRepository) ListByBank(ctx context.Context, bankID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE bank_id = $1
		 ORDER BY created_at DESC`, bankID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetByID retrieves one question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// FindIDByText looks up a question by exact question text. A nil id with a
// nil error means no match; this is the bulk import duplicate probe.
func (r *QuestionRepository) FindIDByText(ctx context.Context, text string) (*uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM questions WHERE question_text = $1 LIMIT 1`, text,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Insert stores a new question and fills in its generated identity.
func (r *QuestionRepository) Insert(ctx context.Context, q *model.Question) error {
	content, err := json.Marshal(contentOf(q))
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (bank_id, department_id, question_types, question_text,
			difficulty, tags, points, explanation, content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		q.BankID, q.DepartmentID, q.Types.Strings(), q.QuestionText,
		string(q.Difficulty), q.Tags, q.Points, q.Explanation, content,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update rewrites all mutable fields of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	content, err := json.Marshal(contentOf(q))
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET bank_id = $2, department_id = $3, question_types = $4, question_text = $5,
		     difficulty = $6, tags = $7, points = $8, explanation = $9, content = $10,
		     updated_at = NOW()
		 WHERE id = $1`,
		q.ID, q.BankID, q.DepartmentID, q.Types.Strings(), q.QuestionText,
		string(q.Difficulty), q.Tags, q.Points, q.Explanation, content,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	var (
		q          model.Question
		types      []string
		difficulty string
		content    []byte
	)
	if err := row.Scan(&q.ID, &q.BankID, &q.DepartmentID, &types, &q.QuestionText,
		&difficulty, &q.Tags, &q.Points, &q.Explanation, &content,
		&q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}

	ts, err := model.ParseTypeSet(types)
	if err != nil {
		return nil, fmt.Errorf("stored type set: %w", err)
	}
	q.Types = ts
	q.Difficulty = model.Difficulty(difficulty)

	var c questionContent
	if len(content) > 0 {
		if err := json.Unmarshal(content, &c); err != nil {
			return nil, fmt.Errorf("unmarshal content: %w", err)
		}
	}
	c.applyTo(&q)

	return &q, nil
}
