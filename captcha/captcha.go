// Package captcha scores anonymous requests with reCAPTCHA Enterprise.
package captcha

import (
	"context"
	"errors"
	"fmt"

	recaptcha "cloud.google.com/go/recaptchaenterprise/v2/apiv1"
	recaptchapb "cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
)

var ErrRejected = errors.New("captcha rejected")

type AssessmentResult struct {
	Valid   bool
	Score   float32
	Action  string
	Reasons []string
}

type Verifier interface {
	Verify(ctx context.Context, token, action string) (*AssessmentResult, error)
}

type Enterprise struct {
	client    *recaptcha.Client
	projectID string
	siteKey   string
	minScore  float32
}

func NewEnterprise(ctx context.Context, projectID, siteKey string, minScore float32) (*Enterprise, error) {
	client, err := recaptcha.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create recaptcha client: %w", err)
	}
	return &Enterprise{client: client, projectID: projectID, siteKey: siteKey, minScore: minScore}, nil
}

func (e *Enterprise) Close() error {
	return e.client.Close()
}

// Verify returns ErrRejected when the token is invalid, issued for another
// action, or scores below the configured threshold.
func (e *Enterprise) Verify(ctx context.Context, token, action string) (*AssessmentResult, error) {
	if token == "" {
		return nil, ErrRejected
	}
	resp, err := e.client.CreateAssessment(ctx, &recaptchapb.CreateAssessmentRequest{
		Parent: "projects/" + e.projectID,
		Assessment: &recaptchapb.Assessment{
			Event: &recaptchapb.Event{
				Token:          token,
				SiteKey:        e.siteKey,
				ExpectedAction: action,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	result := &AssessmentResult{
		Valid:  resp.GetTokenProperties().GetValid(),
		Action: resp.GetTokenProperties().GetAction(),
		Score:  resp.GetRiskAnalysis().GetScore(),
	}
	for _, r := range resp.GetRiskAnalysis().GetReasons() {
		result.Reasons = append(result.Reasons, r.String())
	}

	if err := Evaluate(result, action, e.minScore); err != nil {
		return result, err
	}
	return result, nil
}

// Evaluate applies the acceptance rules to an assessment.
func Evaluate(result *AssessmentResult, action string, minScore float32) error {
	if !result.Valid {
		return fmt.Errorf("%w: invalid token", ErrRejected)
	}
	if action != "" && result.Action != action {
		return fmt.Errorf("%w: action %q does not match %q", ErrRejected, result.Action, action)
	}
	if result.Score < minScore {
		return fmt.Errorf("%w: score %.2f below %.2f", ErrRejected, result.Score, minScore)
	}
	return nil
}
