package submission

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/tablestore"
	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// fakeStore scripts tablestore behavior per test.
type fakeStore struct {
	listRows []tablestore.Record
	listErr  error
	accept   func(rec tablestore.Record) bool
	creates  []tablestore.Record
}

func (f *fakeStore) List(_ context.Context, _ string, _ map[string]string, _ int) ([]tablestore.Record, error) {
	return f.listRows, f.listErr
}

func (f *fakeStore) Create(_ context.Context, _ string, rec tablestore.Record) (tablestore.Record, error) {
	f.creates = append(f.creates, rec)
	if f.accept != nil && f.accept(rec) {
		return rec, nil
	}
	return nil, &tablestore.RejectionError{
		Kind:       tablestore.RejectionUnknownField,
		Message:    "unknown field was referenced",
		StatusCode: 400,
	}
}

func (f *fakeStore) Update(_ context.Context, _ string, _ string, patch tablestore.Record) (tablestore.Record, error) {
	return patch, nil
}

// fakeSubmissionRepo records telemetry writes in memory.
type fakeSubmissionRepo struct {
	records []*entities.SubmissionRecord
}

func (f *fakeSubmissionRepo) Create(_ context.Context, record *entities.SubmissionRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeSubmissionRepo) FindByID(_ context.Context, _ uuid.UUID) (*entities.SubmissionRecord, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) Update(_ context.Context, _ *entities.SubmissionRecord) error {
	return nil
}

func (f *fakeSubmissionRepo) ListBySession(_ context.Context, _ uuid.UUID) ([]*entities.SubmissionRecord, error) {
	return f.records, nil
}

func (f *fakeSubmissionRepo) ListByStatus(_ context.Context, _ entities.SubmissionStatus, _ int) ([]*entities.SubmissionRecord, error) {
	return nil, nil
}

func newTestEngine(store tablestore.Client, repo *fakeSubmissionRepo) *Engine {
	return NewEngine(
		store,
		repo,
		&config.TablestoreConfig{AnswersCollection: "answers"},
		&config.SubmissionConfig{
			FieldPreference: []string{"answer", "response", "answer_text", "text", "content", "transcript"},
			DiscoveryLimit:  5,
			SubmitTimeout:   5 * time.Second,
		},
		nil,
	)
}

func sampleInput() SubmitAnswerInput {
	return SubmitAnswerInput{
		SessionID:   uuid.New(),
		ApplicantID: uuid.New(),
		QuestionID:  uuid.New(),
		InterviewID: uuid.New(),
		AnswerText:  "I led the migration of our billing system.",
	}
}

func TestEngine_FourthCandidateWins(t *testing.T) {
	store := &fakeStore{
		accept: func(rec tablestore.Record) bool {
			_, ok := rec["text"]
			return ok
		},
	}
	repo := &fakeSubmissionRepo{}
	engine := newTestEngine(store, repo)

	result := engine.Submit(context.Background(), sampleInput())

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "text", result.AnswerField)
	assert.Equal(t, 4, result.ShapesTried)
	require.Len(t, store.creates, 4)

	// Strictly the preference order, one attempt per shape.
	wantFields := []string{"answer", "response", "answer_text", "text"}
	for i, field := range wantFields {
		_, ok := store.creates[i][field]
		assert.True(t, ok, "attempt %d should carry field %q", i+1, field)
	}

	require.Len(t, repo.records, 1)
	record := repo.records[0]
	assert.Equal(t, entities.SubmissionStatusSucceeded, record.Status)
	require.NotNil(t, record.AnswerField)
	assert.Equal(t, "text", *record.AnswerField)
	assert.Equal(t, 4, record.ShapesTried)
}

func TestEngine_DiscoveryGuidesFirstCandidate(t *testing.T) {
	store := &fakeStore{
		listRows: []tablestore.Record{
			{"id": "a1", "applicant_id": "x", "answer_text": "earlier answer"},
		},
		accept: func(rec tablestore.Record) bool {
			_, ok := rec["answer_text"]
			return ok
		},
	}
	engine := newTestEngine(store, &fakeSubmissionRepo{})

	result := engine.Submit(context.Background(), sampleInput())

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "answer_text", result.AnswerField)
	assert.Equal(t, 1, result.ShapesTried, "discovered shape should be tried first")
}

func TestEngine_DiscoveredShapeNotRetried(t *testing.T) {
	// Discovery finds "response"; the preference sweep must skip its
	// duplicate so every network attempt is a distinct shape.
	store := &fakeStore{
		listRows: []tablestore.Record{{"response": "prior"}},
		accept:   func(tablestore.Record) bool { return false },
	}
	engine := newTestEngine(store, &fakeSubmissionRepo{})

	result := engine.Submit(context.Background(), sampleInput())

	assert.Equal(t, OutcomeBestEffortFailure, result.Outcome)
	// 6 preference names + identifiers-only; the duplicated "response" shape
	// counts once.
	assert.Equal(t, 7, result.ShapesTried)
	assert.Len(t, store.creates, 7)

	seen := make(map[string]int)
	for _, rec := range store.creates {
		key := ""
		for _, name := range []string{"answer", "response", "answer_text", "text", "content", "transcript"} {
			if _, ok := rec[name]; ok {
				key = name
			}
		}
		seen[key]++
	}
	for field, count := range seen {
		assert.Equal(t, 1, count, "shape %q tried more than once", field)
	}
}

func TestEngine_ExhaustionIsBestEffortFailure(t *testing.T) {
	store := &fakeStore{
		accept: func(tablestore.Record) bool { return false },
	}
	repo := &fakeSubmissionRepo{}
	engine := newTestEngine(store, repo)

	result := engine.Submit(context.Background(), sampleInput())

	assert.Equal(t, OutcomeBestEffortFailure, result.Outcome)
	assert.Equal(t, 7, result.ShapesTried)
	require.NotNil(t, result.LastRejection)
	assert.Equal(t, tablestore.RejectionUnknownField, result.LastRejection.Kind)

	require.Len(t, repo.records, 1)
	record := repo.records[0]
	assert.Equal(t, entities.SubmissionStatusBestEffort, record.Status)

	var details []map[string]interface{}
	require.NoError(t, json.Unmarshal(record.Rejections, &details))
	assert.Len(t, details, 7)
	assert.EqualValues(t, 1, details[0]["ordinal"])
	assert.EqualValues(t, 7, details[6]["ordinal"])
}

func TestEngine_IdentifiersOnlyFallbackForEmptyAnswer(t *testing.T) {
	// Degraded capture submits an empty transcript. A backend that refuses
	// every text field must still accept the identifiers-only record.
	store := &fakeStore{
		accept: func(rec tablestore.Record) bool {
			for _, name := range []string{"answer", "response", "answer_text", "text", "content", "transcript"} {
				if _, ok := rec[name]; ok {
					return false
				}
			}
			return true
		},
	}
	engine := newTestEngine(store, &fakeSubmissionRepo{})

	input := sampleInput()
	input.AnswerText = ""
	result := engine.Submit(context.Background(), input)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "", result.AnswerField)
	assert.Equal(t, 7, result.ShapesTried)

	last := store.creates[len(store.creates)-1]
	assert.Len(t, last, 3, "fallback shape must be identifiers only")
}

func TestEngine_DiscoveryFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{
		listErr: assert.AnError,
		accept: func(rec tablestore.Record) bool {
			_, ok := rec["answer"]
			return ok
		},
	}
	engine := newTestEngine(store, &fakeSubmissionRepo{})

	result := engine.Submit(context.Background(), sampleInput())

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "answer", result.AnswerField)
	assert.Equal(t, 1, result.ShapesTried)
}
