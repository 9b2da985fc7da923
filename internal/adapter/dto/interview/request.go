package interview

// CreateInterviewRequest represents the request to create an interview
type CreateInterviewRequest struct {
	Title           string                 `json:"title" validate:"required,min=1,max=255"`
	Description     *string                `json:"description,omitempty"`
	TablestoreTable string                 `json:"tablestore_table" validate:"required,min=1,max=255"`
	Settings        map[string]interface{} `json:"settings,omitempty"`
}

// AddQuestionRequest represents the request to append a question to an
// interview. Position is assigned server-side; questions keep arrival order.
type AddQuestionRequest struct {
	Prompt           string `json:"prompt" validate:"required,min=1"`
	TimeLimitSeconds *int   `json:"time_limit_seconds,omitempty" validate:"omitempty,min=10,max=3600"`
}

// CreateInviteRequest represents the request to invite an applicant.
// An applicant row is reused when the email is already known. Invite
// lifetime is a deployment setting, not a per-invite choice.
type CreateInviteRequest struct {
	ApplicantName  string  `json:"applicant_name" validate:"required,min=1,max=255"`
	ApplicantEmail string  `json:"applicant_email" validate:"required,email"`
	ExternalRef    *string `json:"external_ref,omitempty" validate:"omitempty,max=255"`
}

// ListInterviewsRequest represents query parameters for listing interviews
type ListInterviewsRequest struct {
	Status    *string `query:"status" validate:"omitempty,oneof=draft active archived"`
	Search    string  `query:"search"`
	Page      int     `query:"page" validate:"min=1"`
	PageSize  int     `query:"page_size" validate:"min=1,max=100"`
	SortBy    string  `query:"sort_by" validate:"omitempty,oneof=created_at title"`
	SortOrder string  `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// ListSessionsRequest represents query parameters for listing an
// interview's capture sessions
type ListSessionsRequest struct {
	Page     int `query:"page" validate:"min=1"`
	PageSize int `query:"page_size" validate:"min=1,max=100"`
}
