package presenter

import (
	"encoding/json"

	interviewdto "github.com/hireflowdev/interview-assistant/internal/adapter/dto/interview"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	interviewUsecase "github.com/hireflowdev/interview-assistant/internal/usecase/interview"
)

// ToInterviewResponse converts an Interview entity to InterviewResponse DTO
func ToInterviewResponse(i *entities.Interview) *interviewdto.InterviewResponse {
	if i == nil {
		return nil
	}

	// Parse settings from JSON
	var settings map[string]interface{}
	if i.Settings != nil {
		json.Unmarshal(i.Settings, &settings)
	}

	response := &interviewdto.InterviewResponse{
		ID:              i.ID.String(),
		Title:           i.Title,
		Description:     i.Description,
		Status:          string(i.Status),
		TablestoreTable: i.TablestoreTable,
		Settings:        settings,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}

	if len(i.Questions) > 0 {
		response.Questions = make([]*interviewdto.QuestionResponse, len(i.Questions))
		for idx := range i.Questions {
			response.Questions[idx] = ToInterviewQuestionResponse(&i.Questions[idx])
		}
	}

	return response
}

// ToInterviewQuestionResponse converts an InterviewQuestion entity to QuestionResponse DTO
func ToInterviewQuestionResponse(q *entities.InterviewQuestion) *interviewdto.QuestionResponse {
	if q == nil {
		return nil
	}

	return &interviewdto.QuestionResponse{
		ID:               q.ID.String(),
		InterviewID:      q.InterviewID.String(),
		Position:         q.Position,
		Prompt:           q.Prompt,
		TimeLimitSeconds: q.TimeLimit,
		CreatedAt:        q.CreatedAt,
	}
}

// ToInterviewListResponse converts a slice of Interview entities to InterviewListResponse
func ToInterviewListResponse(interviews []*entities.Interview, total int64, page, pageSize int) *interviewdto.InterviewListResponse {
	responses := make([]*interviewdto.InterviewResponse, len(interviews))
	for i, iv := range interviews {
		responses[i] = ToInterviewResponse(iv)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &interviewdto.InterviewListResponse{
		Interviews: responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ToApplicantResponse converts an Applicant entity to ApplicantResponse DTO
func ToApplicantResponse(a *entities.Applicant) *interviewdto.ApplicantResponse {
	if a == nil {
		return nil
	}

	return &interviewdto.ApplicantResponse{
		ID:          a.ID.String(),
		FullName:    a.FullName,
		Email:       a.Email,
		ExternalRef: a.ExternalRef,
	}
}

// ToInviteResponse converts an invite and its signed token to InviteResponse
// DTO. The token is surfaced once here; only its hash is stored.
func ToInviteResponse(invite *entities.InterviewInvite, applicant *entities.Applicant, token string) *interviewdto.InviteResponse {
	if invite == nil {
		return nil
	}

	return &interviewdto.InviteResponse{
		ID:        invite.ID.String(),
		Interview: invite.InterviewID.String(),
		Applicant: ToApplicantResponse(applicant),
		Token:     token,
		ExpiresAt: invite.ExpiresAt,
		CreatedAt: invite.CreatedAt,
	}
}

// ToSessionSummaryResponse converts an InterviewSession entity to its operator summary
func ToSessionSummaryResponse(s *entities.InterviewSession) *interviewdto.SessionSummaryResponse {
	if s == nil {
		return nil
	}

	return &interviewdto.SessionSummaryResponse{
		ID:            s.ID.String(),
		InterviewID:   s.InterviewID.String(),
		ApplicantID:   s.ApplicantID.String(),
		Stage:         string(s.Stage),
		QuestionIndex: s.QuestionIndex,
		QuestionCount: s.QuestionCount,
		RoomName:      s.RoomName,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
	}
}

// ToSessionListResponse converts a slice of InterviewSession entities to SessionListResponse
func ToSessionListResponse(sessions []*entities.InterviewSession, total int64, page, pageSize int) *interviewdto.SessionListResponse {
	responses := make([]*interviewdto.SessionSummaryResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = ToSessionSummaryResponse(s)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &interviewdto.SessionListResponse{
		Sessions:   responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ToSubmissionResponse converts a SubmissionRecord entity to SubmissionResponse DTO
func ToSubmissionResponse(r *entities.SubmissionRecord) *interviewdto.SubmissionResponse {
	if r == nil {
		return nil
	}

	var rejections []map[string]interface{}
	if r.Rejections != nil {
		json.Unmarshal(r.Rejections, &rejections)
	}

	return &interviewdto.SubmissionResponse{
		ID:          r.ID.String(),
		Status:      string(r.Status),
		TargetTable: r.TargetTable,
		AnswerField: r.AnswerField,
		ShapesTried: r.ShapesTried,
		AnswerChars: r.AnswerChars,
		Rejections:  rejections,
		SubmittedAt: r.SubmittedAt,
	}
}

// ToTranscriptionJobResponse converts a TranscriptionJob entity to its operator view
func ToTranscriptionJobResponse(j *entities.TranscriptionJob) *interviewdto.TranscriptionJobResponse {
	if j == nil {
		return nil
	}

	return &interviewdto.TranscriptionJobResponse{
		ID:            j.ID.String(),
		Status:        string(j.Status),
		ExternalJobID: j.ExternalJobID,
		RetryCount:    j.RetryCount,
		MaxRetries:    j.MaxRetries,
		LastError:     j.LastError,
		CompletedAt:   j.CompletedAt,
	}
}

// ToAttemptResponse converts a RecordingAttempt entity plus its submission
// telemetry and backfill job into AttemptResponse DTO. Submission and job
// may be nil when the attempt has neither.
func ToAttemptResponse(a *entities.RecordingAttempt, submission *entities.SubmissionRecord, job *entities.TranscriptionJob) *interviewdto.AttemptResponse {
	if a == nil {
		return nil
	}

	response := &interviewdto.AttemptResponse{
		ID:                  a.ID.String(),
		SessionID:           a.SessionID.String(),
		QuestionID:          a.QuestionID.String(),
		State:               string(a.State),
		Degraded:            a.Degraded,
		StartedAt:           a.StartedAt,
		StoppedAt:           a.StoppedAt,
		DurationSeconds:     a.DurationSeconds,
		TranscriptText:      a.TranscriptText,
		TranscriptSource:    string(a.TranscriptSource),
		AuthenticityScore:   a.AuthenticityScore,
		AuthenticityVerdict: a.AuthenticityVerdict,
		Assessed:            a.Assessed,
		ArtifactObjectKey:   a.ArtifactObjectKey,
		ArtifactURL:         a.ArtifactURL,
		ArtifactBytes:       a.ArtifactBytes,
		FailureMessage:      a.FailureMessage,
		Submission:          ToSubmissionResponse(submission),
		TranscriptionJob:    ToTranscriptionJobResponse(job),
	}

	if a.StopReason != nil {
		reason := string(*a.StopReason)
		response.StopReason = &reason
	}

	return response
}

// ToAttemptListResponse converts attempt details to AttemptListResponse
func ToAttemptListResponse(details []*interviewUsecase.AttemptDetail) *interviewdto.AttemptListResponse {
	responses := make([]*interviewdto.AttemptResponse, len(details))
	for i, d := range details {
		responses[i] = ToAttemptResponse(d.Attempt, d.Submission, d.Job)
	}

	return &interviewdto.AttemptListResponse{
		Attempts: responses,
		Total:    len(responses),
	}
}

// ToRecordingListResponse converts a slice of SessionRecording entities
func ToRecordingListResponse(recordings []*entities.SessionRecording) []*interviewdto.RecordingResponse {
	responses := make([]*interviewdto.RecordingResponse, len(recordings))
	for i, r := range recordings {
		responses[i] = ToRecordingResponse(r)
	}
	return responses
}

// ToRecordingResponse converts a SessionRecording entity to RecordingResponse DTO
func ToRecordingResponse(r *entities.SessionRecording) *interviewdto.RecordingResponse {
	if r == nil {
		return nil
	}

	return &interviewdto.RecordingResponse{
		ID:          r.ID.String(),
		SessionID:   r.SessionID.String(),
		RoomName:    r.RoomName,
		Status:      string(r.Status),
		FileURL:     r.FileURL,
		FileSize:    r.FileSize,
		Duration:    r.Duration,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}
