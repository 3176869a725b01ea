package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classbridge/qbank-backend/internal/logger"
	"github.com/classbridge/qbank-backend/internal/model"
)

// Row-level error messages. Validation messages tell the caller their data
// is wrong; the generic lookup/save messages signal that the system failed,
// and the two are never conflated.
const (
	ImportErrDuplicate    = "Duplicate question text found"
	ImportErrLookupFailed = "question lookup failed"
	ImportErrSaveFailed   = "failed to save question"
)

// ErrMalformedCSV marks a CSV payload the parser could not read at all;
// cell-level problems are reported per row instead.
var ErrMalformedCSV = errors.New("malformed csv")

// QuestionStore is the persistence collaborator the reconciler needs:
// duplicate lookup by exact question text plus create and update.
type QuestionStore interface {
	FindIDByText(ctx context.Context, text string) (*uuid.UUID, error)
	Insert(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
}

// ImportService reconciles bulk import batches: per row it validates,
// detects duplicates, and creates or overwrites, reporting a positionally
// aligned result list. One bad row never aborts the batch.
type ImportService struct {
	store QuestionStore
	log   zerolog.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(store QuestionStore, log zerolog.Logger) *ImportService {
	return &ImportService{
		store: store,
		log:   logger.Component(log, "import_service"),
	}
}

// Run processes the batch and returns per-row results plus derived
// aggregate counts. It returns an error only when the batch as a whole is
// unusable (malformed CSV payload, or the caller abandoned the context
// before the first row); once row processing starts, partial results are
// always returned.
//
// Rows are processed sequentially in input order. Duplicate detection is
// keyed on trimmed question text; rows repeating a text already created in
// the same batch are reconciled against that question instead of being
// double-created.
func (s *ImportService) Run(ctx context.Context, req *model.BulkImportRequest) (model.BulkImportResponse, error) {
	rows := req.Questions
	if req.Format == model.ImportFormatCSV {
		parsed, err := ParseCSVRows(strings.NewReader(req.CSVData))
		if err != nil {
			return model.BulkImportResponse{}, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		rows = parsed
	}

	if err := ctx.Err(); err != nil {
		return model.BulkImportResponse{}, err
	}

	// Text already reconciled in this batch, keyed on the dedupe key.
	seen := make(map[string]uuid.UUID)

	outcomes := make([]model.ImportOutcome, 0, len(rows))
	for i := range rows {
		outcomes = append(outcomes, s.reconcileRow(ctx, i, &rows[i], req.Department, req.OverwriteExisting, seen))
	}

	resp := model.BuildImportResponse(outcomes)
	s.log.Info().
		Int("rows", len(rows)).
		Int("imported", resp.Imported).
		Int("updated", resp.Updated).
		Int("failed", resp.Failed).
		Msg("Bulk import finished")
	return resp, nil
}

func (s *ImportService) reconcileRow(ctx context.Context, index int, row *model.BulkImportRow, department *string, overwrite bool, seen map[string]uuid.UUID) model.ImportOutcome {
	q, err := row.ToPayload(department).ToQuestion()
	if err != nil {
		return errorOutcome(index, err.Error())
	}

	if violations := ValidateQuestion(q); len(violations) > 0 {
		return errorOutcome(index, violations[0].Message)
	}

	key := model.ImportDedupeKey(q.QuestionText)
	existingID, inBatch := seen[key]
	if !inBatch {
		found, err := s.store.FindIDByText(ctx, key)
		if err != nil {
			s.log.Error().Err(err).Int("index", index).Msg("Duplicate lookup failed")
			return errorOutcome(index, ImportErrLookupFailed)
		}
		if found == nil {
			return s.createRow(ctx, index, q, seen, key)
		}
		existingID = *found
	}

	if !overwrite {
		return errorOutcome(index, ImportErrDuplicate)
	}

	q.ID = existingID
	if err := s.store.Update(ctx, q); err != nil {
		s.log.Error().Err(err).Int("index", index).Msg("Overwrite failed")
		return errorOutcome(index, ImportErrSaveFailed)
	}
	seen[key] = q.ID
	return successOutcome(index, q.ID, true)
}

func (s *ImportService) createRow(ctx context.Context, index int, q *model.Question, seen map[string]uuid.UUID, key string) model.ImportOutcome {
	if err := s.store.Insert(ctx, q); err != nil {
		s.log.Error().Err(err).Int("index", index).Msg("Insert failed")
		return errorOutcome(index, ImportErrSaveFailed)
	}
	seen[key] = q.ID
	return successOutcome(index, q.ID, false)
}

func errorOutcome(index int, message string) model.ImportOutcome {
	return model.ImportOutcome{Item: model.BulkImportResultItem{
		Index:  index,
		Status: model.ImportStatusError,
		Error:  &message,
	}}
}

func successOutcome(index int, id uuid.UUID, updated bool) model.ImportOutcome {
	idStr := id.String()
	return model.ImportOutcome{
		Item: model.BulkImportResultItem{
			Index:      index,
			Status:     model.ImportStatusSuccess,
			QuestionID: &idStr,
		},
		Updated: updated,
	}
}
