package captcha

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		result  AssessmentResult
		action  string
		wantErr bool
	}{
		{"accepted", AssessmentResult{Valid: true, Action: "customer_upload", Score: 0.9}, "customer_upload", false},
		{"any action", AssessmentResult{Valid: true, Action: "other", Score: 0.9}, "", false},
		{"invalid token", AssessmentResult{Valid: false, Score: 0.9}, "", true},
		{"action mismatch", AssessmentResult{Valid: true, Action: "login", Score: 0.9}, "customer_upload", true},
		{"low score", AssessmentResult{Valid: true, Action: "customer_upload", Score: 0.1}, "customer_upload", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evaluate(&tt.result, tt.action, 0.5)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRejected)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
