package presenter

import (
	capturedto "github.com/hireflowdev/interview-assistant/internal/adapter/dto/capture"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/usecase/authenticity"
	"github.com/hireflowdev/interview-assistant/internal/usecase/capture"
)

// ToCaptureSessionResponse converts an InterviewSession entity to SessionResponse DTO
func ToCaptureSessionResponse(s *entities.InterviewSession) *capturedto.SessionResponse {
	if s == nil {
		return nil
	}

	return &capturedto.SessionResponse{
		ID:            s.ID.String(),
		InterviewID:   s.InterviewID.String(),
		Stage:         string(s.Stage),
		QuestionIndex: s.QuestionIndex,
		QuestionCount: s.QuestionCount,
		RoomName:      s.RoomName,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
	}
}

// ToCaptureQuestionResponse converts an InterviewQuestion to the
// applicant-facing QuestionResponse. The per-question limit wins over the
// capture default when set.
func ToCaptureQuestionResponse(q *entities.InterviewQuestion, defaultLimitSeconds int) *capturedto.QuestionResponse {
	if q == nil {
		return nil
	}

	limit := defaultLimitSeconds
	if q.TimeLimit != nil && *q.TimeLimit > 0 {
		limit = *q.TimeLimit
	}

	return &capturedto.QuestionResponse{
		ID:               q.ID.String(),
		Position:         q.Position,
		Prompt:           q.Prompt,
		TimeLimitSeconds: limit,
	}
}

// ToInterviewSummaryResponse converts an Interview entity to the
// applicant-facing summary
func ToInterviewSummaryResponse(i *entities.Interview) *capturedto.InterviewSummaryResponse {
	if i == nil {
		return nil
	}

	return &capturedto.InterviewSummaryResponse{
		ID:          i.ID.String(),
		Title:       i.Title,
		Description: i.Description,
	}
}

// ToBeginSessionResponse converts a BeginSessionOutput to BeginSessionResponse DTO
func ToBeginSessionResponse(out *capture.BeginSessionOutput) *capturedto.BeginSessionResponse {
	if out == nil {
		return nil
	}

	response := &capturedto.BeginSessionResponse{
		Session:      ToCaptureSessionResponse(out.Session),
		Interview:    ToInterviewSummaryResponse(out.Interview),
		SessionToken: out.SessionToken,
	}

	if out.Room != nil {
		response.Room = &capturedto.RoomAccessResponse{
			Name:  out.Room.Name,
			URL:   out.Room.URL,
			Token: out.Room.Token,
		}
	}

	return response
}

// ToAssessmentResponse converts an authenticity assessment to its DTO
func ToAssessmentResponse(a authenticity.Assessment) *capturedto.AssessmentResponse {
	return &capturedto.AssessmentResponse{
		Score:    a.Score,
		Verdict:  string(a.Verdict),
		Assessed: a.Assessed,
		Signals:  a.Signals,
	}
}

// ToAttemptStateResponse converts a stored RecordingAttempt row to the
// capture-facing attempt state
func ToAttemptStateResponse(a *entities.RecordingAttempt) *capturedto.AttemptStateResponse {
	if a == nil {
		return nil
	}

	response := &capturedto.AttemptStateResponse{
		ID:               a.ID.String(),
		State:            string(a.State),
		Degraded:         a.Degraded,
		StartedAt:        a.StartedAt,
		StoppedAt:        a.StoppedAt,
		DurationSeconds:  a.DurationSeconds,
		TranscriptText:   a.TranscriptText,
		TranscriptSource: string(a.TranscriptSource),
	}

	if a.StopReason != nil {
		reason := string(*a.StopReason)
		response.StopReason = &reason
	}

	if a.Assessed && a.AuthenticityScore != nil && a.AuthenticityVerdict != nil {
		response.Assessment = &capturedto.AssessmentResponse{
			Score:    *a.AuthenticityScore,
			Verdict:  *a.AuthenticityVerdict,
			Assessed: true,
		}
	}

	return response
}

// ToSessionStateResponse converts a SessionView to SessionStateResponse DTO
func ToSessionStateResponse(view *capture.SessionView, defaultLimitSeconds int) *capturedto.SessionStateResponse {
	if view == nil {
		return nil
	}

	return &capturedto.SessionStateResponse{
		Session:  ToCaptureSessionResponse(view.Session),
		Question: ToCaptureQuestionResponse(view.Question, defaultLimitSeconds),
		Attempt:  ToAttemptStateResponse(view.Attempt),
	}
}

// ToAttemptSnapshotResponse converts a live attempt snapshot to its DTO
func ToAttemptSnapshotResponse(s *capture.Snapshot) *capturedto.AttemptSnapshotResponse {
	if s == nil {
		return nil
	}

	return &capturedto.AttemptSnapshotResponse{
		AttemptID:        s.AttemptID.String(),
		State:            string(s.State),
		ElapsedSeconds:   s.ElapsedSeconds,
		TimeLimitSeconds: s.TimeLimitSeconds,
		WarningIssued:    s.WarningIssued,
		Degraded:         s.Degraded,
		FullText:         s.FullText,
		FinalizedText:    s.FinalizedText,
		Interim:          s.Interim,
		Assessment:       ToAssessmentResponse(s.Assessment),
	}
}

// ToStopAnswerResponse converts a stop result to its DTO
func ToStopAnswerResponse(r *capture.StopResult) *capturedto.StopAnswerResponse {
	if r == nil {
		return nil
	}

	segments := make([]capturedto.SegmentResponse, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = capturedto.SegmentResponse{
			Text:       seg.Text,
			Confidence: seg.Confidence,
			AudioStart: seg.AudioStart,
			AudioEnd:   seg.AudioEnd,
		}
	}

	response := &capturedto.StopAnswerResponse{
		AttemptID:      r.AttemptID.String(),
		Reason:         string(r.Reason),
		ElapsedSeconds: r.ElapsedSeconds,
		WarningIssued:  r.WarningIssued,
		Degraded:       r.Degraded,
		FinalizedText:  r.FinalizedText,
		Segments:       segments,
		Assessment:     ToAssessmentResponse(r.Assessment),
	}

	if r.Artifact != nil {
		response.Artifact = &capturedto.ArtifactResponse{
			ObjectKey:       r.Artifact.ObjectKey,
			URL:             r.Artifact.URL,
			Bytes:           r.Artifact.Bytes,
			DurationSeconds: r.Artifact.DurationSeconds,
			SampleRate:      r.Artifact.SampleRate,
			Format:          r.Artifact.Format,
		}
	}

	return response
}
