package tablestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRejection(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  RejectionKind
		wantField string
	}{
		{
			name:      "missing required field with quoted name",
			status:    400,
			body:      `{"error": {"message": "required field \"answer\" is missing"}}`,
			wantKind:  RejectionMissingField,
			wantField: "answer",
		},
		{
			name:      "missing field colon form",
			status:    422,
			body:      `{"message": "missing field: response"}`,
			wantKind:  RejectionMissingField,
			wantField: "response",
		},
		{
			name:      "is required phrasing",
			status:    400,
			body:      `{"message": "'answer_text' is required"}`,
			wantKind:  RejectionMissingField,
			wantField: "answer_text",
		},
		{
			name:      "unknown field",
			status:    400,
			body:      `{"message": "unknown field \"transcript\" was referenced"}`,
			wantKind:  RejectionUnknownField,
			wantField: "transcript",
		},
		{
			name:      "unrecognized field",
			status:    400,
			body:      `{"error": {"message": "unrecognized field 'content' in payload"}}`,
			wantKind:  RejectionUnknownField,
			wantField: "content",
		},
		{
			name:      "structured field wins over parsing",
			status:    400,
			body:      `{"message": "unknown field referenced", "field": "text"}`,
			wantKind:  RejectionUnknownField,
			wantField: "text",
		},
		{
			name:     "anything else is other",
			status:   409,
			body:     `{"message": "duplicate record"}`,
			wantKind: RejectionOther,
		},
		{
			name:     "non-JSON body still classifies",
			status:   400,
			body:     `required field is missing`,
			wantKind: RejectionMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := classifyRejection(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantKind, rej.Kind)
			assert.Equal(t, tt.wantField, rej.Field)
			assert.Equal(t, tt.status, rej.StatusCode)
			assert.NotEmpty(t, rej.Error())
		})
	}
}
