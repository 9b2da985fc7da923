package submission

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/tablestore"
	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// Outcome is the terminal state of one adaptive submission.
type Outcome string

const (
	// OutcomeSuccess means some candidate payload was accepted.
	OutcomeSuccess Outcome = "success"
	// OutcomeBestEffortFailure means every candidate including the
	// identifiers-only fallback was rejected. The interview flow continues;
	// the failure is operator telemetry, not a candidate-facing error.
	OutcomeBestEffortFailure Outcome = "best_effort_failure"
)

// Service defines the interface for the adaptive answer submission use case
type Service interface {
	// Submit writes one answer to the tablestore, probing payload shapes
	// until one is accepted. It never returns an error: exhaustion is
	// reported in the result so callers cannot accidentally block the
	// candidate's progress on a persistence failure.
	Submit(ctx context.Context, input SubmitAnswerInput) *SubmissionResult
}

// SubmitAnswerInput identifies the answer being submitted. SessionID and
// AttemptID only link the telemetry row; they are not sent to the tablestore.
type SubmitAnswerInput struct {
	SessionID   uuid.UUID
	AttemptID   *uuid.UUID
	ApplicantID uuid.UUID
	QuestionID  uuid.UUID
	InterviewID uuid.UUID
	AnswerText  string
}

// SubmissionResult reports how the submission went.
type SubmissionResult struct {
	Outcome       Outcome
	AnswerField   string // accepted text field, empty for the identifiers-only shape
	ShapesTried   int
	LastRejection *tablestore.RejectionError
	RecordID      *uuid.UUID // telemetry row, nil when persistence was unavailable
}

// rejectionDetail is one entry of the telemetry rejection log.
type rejectionDetail struct {
	Ordinal    int    `json:"ordinal"`
	Shape      string `json:"shape"`
	Kind       string `json:"kind"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

// candidate is one payload shape to try.
type candidate struct {
	answerField string // "" for identifiers-only
	payload     tablestore.Record
}

// Engine is the adaptive submission engine. Deployments disagree on what the
// answers collection calls its text column, so the engine probes shapes in a
// fixed preference order instead of assuming one.
type Engine struct {
	store             tablestore.Client
	submissionRepo    repositories.SubmissionRepository
	answersCollection string
	fieldPreference   []string
	discoveryLimit    int
	submitTimeout     time.Duration
	logger            *zap.Logger
}

var _ Service = (*Engine)(nil)

// NewEngine creates a new submission engine
func NewEngine(
	store tablestore.Client,
	submissionRepo repositories.SubmissionRepository,
	tablestoreCfg *config.TablestoreConfig,
	submissionCfg *config.SubmissionConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:             store,
		submissionRepo:    submissionRepo,
		answersCollection: tablestoreCfg.AnswersCollection,
		fieldPreference:   submissionCfg.FieldPreference,
		discoveryLimit:    submissionCfg.DiscoveryLimit,
		submitTimeout:     submissionCfg.SubmitTimeout,
		logger:            logger,
	}
}

// Submit writes one answer to the tablestore, trying candidate payload shapes
// strictly in order until one is accepted.
func (e *Engine) Submit(ctx context.Context, input SubmitAnswerInput) *SubmissionResult {
	ctx, cancel := context.WithTimeout(ctx, e.submitTimeout)
	defer cancel()

	if e.logger != nil {
		e.logger.Info("📤 Submitting answer to tablestore",
			zap.String("applicant_id", input.ApplicantID.String()),
			zap.String("question_id", input.QuestionID.String()),
			zap.Int("answer_chars", len(input.AnswerText)),
		)
	}

	record := entities.NewSubmissionRecord(
		input.SessionID, input.InterviewID, input.ApplicantID, input.QuestionID,
		e.answersCollection, len(input.AnswerText),
	)
	record.AttemptID = input.AttemptID
	e.persistRecord(ctx, record, true)

	candidates := e.buildCandidates(ctx, input)

	var (
		rejections    []rejectionDetail
		lastRejection *tablestore.RejectionError
		tried         = make(map[string]bool, len(candidates))
		ordinal       int
	)

	for _, cand := range candidates {
		key := shapeKey(cand.payload)
		if tried[key] {
			continue
		}
		tried[key] = true
		ordinal++

		_, err := e.store.Create(ctx, e.answersCollection, cand.payload)
		if err == nil {
			record.MarkAsSucceeded(cand.answerField, ordinal)
			e.persistRecord(ctx, record, false)
			if e.logger != nil {
				e.logger.Info("✅ Answer accepted by tablestore",
					zap.String("question_id", input.QuestionID.String()),
					zap.String("answer_field", cand.answerField),
					zap.Int("shapes_tried", ordinal),
				)
			}
			return &SubmissionResult{
				Outcome:     OutcomeSuccess,
				AnswerField: cand.answerField,
				ShapesTried: ordinal,
				RecordID:    &record.ID,
			}
		}

		rej := asRejection(err)
		lastRejection = rej
		rejections = append(rejections, rejectionDetail{
			Ordinal:    ordinal,
			Shape:      key,
			Kind:       string(rej.Kind),
			Field:      rej.Field,
			Message:    rej.Message,
			StatusCode: rej.StatusCode,
		})

		// Learned constraints are logged for operators but never mutate the
		// candidate list mid-call: differently-configured deployments would
		// learn conflicting constraints.
		if e.logger != nil {
			e.logger.Warn("⚠️ Tablestore rejected answer shape",
				zap.Int("ordinal", ordinal),
				zap.String("shape", key),
				zap.String("kind", string(rej.Kind)),
				zap.String("field", rej.Field),
			)
		}
	}

	detail, _ := json.Marshal(rejections)
	record.MarkAsBestEffortFailed(ordinal, datatypes.JSON(detail))
	e.persistRecord(ctx, record, false)

	if e.logger != nil {
		e.logger.Error("❌ Answer submission exhausted every shape",
			zap.String("question_id", input.QuestionID.String()),
			zap.Int("shapes_tried", ordinal),
			zap.String("last_rejection", lastRejection.Message),
		)
	}

	return &SubmissionResult{
		Outcome:       OutcomeBestEffortFailure,
		ShapesTried:   ordinal,
		LastRejection: lastRejection,
		RecordID:      &record.ID,
	}
}

// buildCandidates assembles the payload shapes to try, in order: the
// discovered field first when the backend already holds answer rows, then one
// shape per preference-list name, then identifiers alone as the last resort.
func (e *Engine) buildCandidates(ctx context.Context, input SubmitAnswerInput) []candidate {
	identifiers := tablestore.Record{
		"applicant_id": input.ApplicantID.String(),
		"question_id":  input.QuestionID.String(),
		"interview_id": input.InterviewID.String(),
	}

	var candidates []candidate

	if discovered := e.discoverAnswerField(ctx); discovered != "" {
		candidates = append(candidates, newCandidate(identifiers, discovered, input.AnswerText))
	}
	for _, name := range e.fieldPreference {
		candidates = append(candidates, newCandidate(identifiers, name, input.AnswerText))
	}
	candidates = append(candidates, candidate{answerField: "", payload: cloneRecord(identifiers)})

	return candidates
}

// discoverAnswerField reads a handful of existing answer rows and returns the
// first preference-list name present in them. Discovery failure is non-fatal:
// the preference-list sweep covers the same ground.
func (e *Engine) discoverAnswerField(ctx context.Context) string {
	rows, err := e.store.List(ctx, e.answersCollection, nil, e.discoveryLimit)
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("Answer field discovery failed", zap.Error(err))
		}
		return ""
	}
	if len(rows) == 0 {
		return ""
	}

	fields := make(map[string]bool, len(rows[0]))
	for name := range rows[0] {
		fields[name] = true
	}
	for _, name := range e.fieldPreference {
		if fields[name] {
			if e.logger != nil {
				e.logger.Debug("Discovered answer field from existing rows",
					zap.String("field", name),
					zap.Int("rows_inspected", len(rows)),
				)
			}
			return name
		}
	}
	return ""
}

// persistRecord saves telemetry best-effort. A telemetry write must never
// break the submission it describes.
func (e *Engine) persistRecord(ctx context.Context, record *entities.SubmissionRecord, create bool) {
	if e.submissionRepo == nil {
		return
	}

	var err error
	if create {
		err = e.submissionRepo.Create(ctx, record)
	} else {
		err = e.submissionRepo.Update(ctx, record)
	}
	if err != nil && e.logger != nil {
		e.logger.Warn("⚠️ Failed to persist submission telemetry",
			zap.String("record_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

func newCandidate(identifiers tablestore.Record, field, answerText string) candidate {
	payload := cloneRecord(identifiers)
	payload[field] = answerText
	return candidate{answerField: field, payload: payload}
}

// shapeKey identifies a payload shape by its sorted field names. Two
// candidates with the same key would be the same request, so the second is
// skipped.
func shapeKey(payload tablestore.Record) string {
	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// asRejection normalizes transport failures into the rejection shape so the
// telemetry log has one format. The tablestore client already exhausted its
// transport retries by the time an error reaches here.
func asRejection(err error) *tablestore.RejectionError {
	var rej *tablestore.RejectionError
	if errors.As(err, &rej) {
		return rej
	}
	return &tablestore.RejectionError{
		Kind:    tablestore.RejectionOther,
		Message: err.Error(),
	}
}

func cloneRecord(rec tablestore.Record) tablestore.Record {
	out := make(tablestore.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	return out
}
