package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classbridge/qbank-backend/internal/model"
)

// fakeStore is an in-memory QuestionStore for reconciler tests.
type fakeStore struct {
	byText map[string]uuid.UUID

	inserted  int
	updated   int
	findErr   error
	insertErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byText: make(map[string]uuid.UUID)}
}

func (f *fakeStore) FindIDByText(_ context.Context, text string) (*uuid.UUID, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if id, ok := f.byText[text]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeStore) Insert(_ context.Context, q *model.Question) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	q.ID = uuid.New()
	f.byText[q.QuestionText] = q.ID
	f.inserted++
	return nil
}

func (f *fakeStore) Update(_ context.Context, q *model.Question) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated++
	return nil
}

func importRow(text string) model.BulkImportRow {
	return model.BulkImportRow{
		QuestionType:    "short_answer",
		QuestionText:    text,
		Difficulty:      "easy",
		Points:          1,
		AcceptedAnswers: []string{"yes"},
	}
}

func runImport(t *testing.T, store QuestionStore, req *model.BulkImportRequest) model.BulkImportResponse {
	t.Helper()
	resp, err := NewImportService(store, zerolog.Nop()).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return resp
}

func TestImportCreatesRows(t *testing.T) {
	store := newFakeStore()
	resp := runImport(t, store, &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{importRow("Q1"), importRow("Q2"), importRow("Q3")},
	})

	if len(resp.Results) != 3 {
		t.Fatalf("expected one result per row, got %d", len(resp.Results))
	}
	if resp.Imported != 3 || resp.Failed != 0 || resp.Updated != 0 {
		t.Errorf("counts: %+v", resp)
	}
	if store.inserted != 3 {
		t.Errorf("inserted %d questions", store.inserted)
	}
	for i, item := range resp.Results {
		if item.Index != i || item.Status != model.ImportStatusSuccess || item.QuestionID == nil {
			t.Errorf("result %d: %+v", i, item)
		}
	}
}

func TestImportBadRowDoesNotAbortBatch(t *testing.T) {
	bad := importRow("Q-bad")
	bad.AcceptedAnswers = nil

	store := newFakeStore()
	resp := runImport(t, store, &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{importRow("Q1"), bad, importRow("Q3")},
	})

	if resp.Imported != 2 || resp.Failed != 1 {
		t.Fatalf("counts: %+v", resp)
	}
	item := resp.Results[1]
	if item.Status != model.ImportStatusError || item.Error == nil {
		t.Fatalf("row 1: %+v", item)
	}
	if *item.Error != "correct answer is required" {
		t.Errorf("row 1 error: %q", *item.Error)
	}
}

func TestImportUnknownTypeReportedPerRow(t *testing.T) {
	bad := importRow("Q1")
	bad.QuestionType = "riddle"

	resp := runImport(t, newFakeStore(), &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{bad},
	})
	if resp.Failed != 1 || resp.Results[0].Error == nil {
		t.Fatalf("unknown type should fail the row: %+v", resp)
	}
}

func TestImportDuplicateRejectedWithoutOverwrite(t *testing.T) {
	store := newFakeStore()
	store.byText["Q1"] = uuid.New()

	resp := runImport(t, store, &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{importRow("Q1")},
	})

	if resp.Failed != 1 {
		t.Fatalf("counts: %+v", resp)
	}
	if got := *resp.Results[0].Error; got != ImportErrDuplicate {
		t.Errorf("error message: %q", got)
	}
	if store.inserted != 0 || store.updated != 0 {
		t.Error("duplicate row must not write")
	}
}

func TestImportOverwriteUpdatesExisting(t *testing.T) {
	store := newFakeStore()
	existing := uuid.New()
	store.byText["Q1"] = existing

	resp := runImport(t, store, &model.BulkImportRequest{
		Format:            model.ImportFormatJSON,
		Questions:         []model.BulkImportRow{importRow("Q1"), importRow("Q2")},
		OverwriteExisting: true,
	})

	if resp.Updated != 1 || resp.Imported != 1 || resp.Failed != 0 {
		t.Fatalf("counts: %+v", resp)
	}
	if got := *resp.Results[0].QuestionID; got != existing.String() {
		t.Errorf("overwrite should keep the existing id, got %s", got)
	}
	if store.updated != 1 || store.inserted != 1 {
		t.Errorf("store writes: updated=%d inserted=%d", store.updated, store.inserted)
	}
}

func TestImportInBatchDuplicate(t *testing.T) {
	store := newFakeStore()

	// Second occurrence of the same text in one batch is a duplicate of the
	// row just created, without overwrite it fails.
	resp := runImport(t, store, &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{importRow("Q1"), importRow(" Q1 ")},
	})
	if resp.Imported != 1 || resp.Failed != 1 {
		t.Fatalf("counts: %+v", resp)
	}
	if got := *resp.Results[1].Error; got != ImportErrDuplicate {
		t.Errorf("error message: %q", got)
	}

	// With overwrite the repeat reconciles against the in-batch question
	// instead of creating a second one.
	store = newFakeStore()
	resp = runImport(t, store, &model.BulkImportRequest{
		Format:            model.ImportFormatJSON,
		Questions:         []model.BulkImportRow{importRow("Q1"), importRow("Q1")},
		OverwriteExisting: true,
	})
	if resp.Imported != 1 || resp.Updated != 1 {
		t.Fatalf("counts: %+v", resp)
	}
	if store.inserted != 1 {
		t.Errorf("double-created: inserted=%d", store.inserted)
	}
	if *resp.Results[0].QuestionID != *resp.Results[1].QuestionID {
		t.Error("both rows should resolve to the same question")
	}
}

func TestImportLookupFailureIsNotValidation(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("connection refused")

	resp := runImport(t, store, &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{importRow("Q1")},
	})

	if resp.Failed != 1 {
		t.Fatalf("counts: %+v", resp)
	}
	if got := *resp.Results[0].Error; got != ImportErrLookupFailed {
		t.Errorf("lookup failure must not read like a data problem: %q", got)
	}
}

func TestImportSaveFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")

	resp := runImport(t, store, &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{importRow("Q1")},
	})
	if got := *resp.Results[0].Error; got != ImportErrSaveFailed {
		t.Errorf("error message: %q", got)
	}
}

func TestImportAppliesDepartment(t *testing.T) {
	store := newFakeStore()
	dept := "MATH"
	var captured *model.Question
	spy := &captureStore{fakeStore: store, onInsert: func(q *model.Question) { captured = q }}

	runImport(t, spy, &model.BulkImportRequest{
		Format:     model.ImportFormatJSON,
		Questions:  []model.BulkImportRow{importRow("Q1")},
		Department: &dept,
	})

	if captured == nil || captured.DepartmentID == nil || *captured.DepartmentID != dept {
		t.Errorf("department not applied: %+v", captured)
	}
}

func TestImportCSVBatch(t *testing.T) {
	csvData := "question_type,question_text,difficulty,points,options,correct_answers,explanation,tags\n" +
		"multiple_choice,What is 2+2?,easy,1,3|4|5,4,,math\n" +
		"short_answer,Capital of France?,medium,2,,Paris,,geo\n"

	store := newFakeStore()
	resp := runImport(t, store, &model.BulkImportRequest{
		Format:  model.ImportFormatCSV,
		CSVData: csvData,
	})

	if resp.Imported != 2 || resp.Failed != 0 {
		t.Fatalf("counts: %+v", resp)
	}
}

func TestImportRejectsNonFinitePoints(t *testing.T) {
	// strconv.ParseFloat happily reads "NaN" from a csv cell; the row must
	// still fail validation.
	csvData := "question_type,question_text,difficulty,points,options,correct_answers,explanation,tags\n" +
		"short_answer,Q?,easy,NaN,,A,,\n"

	resp := runImport(t, newFakeStore(), &model.BulkImportRequest{
		Format:  model.ImportFormatCSV,
		CSVData: csvData,
	})
	if resp.Failed != 1 || resp.Imported != 0 {
		t.Fatalf("counts: %+v", resp)
	}
	if got := *resp.Results[0].Error; got != "points must be at least 0.1" {
		t.Errorf("error message: %q", got)
	}
}

func TestImportMalformedCSVFailsWhole(t *testing.T) {
	_, err := NewImportService(newFakeStore(), zerolog.Nop()).Run(context.Background(), &model.BulkImportRequest{
		Format:  model.ImportFormatCSV,
		CSVData: "not,the,right,header\nrow",
	})
	if !errors.Is(err, ErrMalformedCSV) {
		t.Errorf("expected ErrMalformedCSV, got %v", err)
	}
}

func TestImportCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImportService(newFakeStore(), zerolog.Nop()).Run(ctx, &model.BulkImportRequest{
		Format:    model.ImportFormatJSON,
		Questions: []model.BulkImportRow{importRow("Q1")},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// captureStore decorates fakeStore to observe inserted questions.
type captureStore struct {
	*fakeStore
	onInsert func(*model.Question)
}

func (c *captureStore) Insert(ctx context.Context, q *model.Question) error {
	if err := c.fakeStore.Insert(ctx, q); err != nil {
		return err
	}
	if c.onInsert != nil {
		c.onInsert(q)
	}
	return nil
}
