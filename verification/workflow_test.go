package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		current models.VerificationStatus
		action  Action
		want    models.VerificationStatus
		wantErr error
	}{
		{"review pending", models.VerificationPending, ActionReview, models.VerificationUnderReview, nil},
		{"review unenrolled", "", ActionReview, models.VerificationUnderReview, nil},
		{"review under review is a no-op", models.VerificationUnderReview, ActionReview, models.VerificationUnderReview, nil},
		{"review verified", models.VerificationVerified, ActionReview, models.VerificationVerified, ErrInvalidTransition},
		{"review rejected", models.VerificationRejected, ActionReview, models.VerificationRejected, ErrInvalidTransition},
		{"verify pending", models.VerificationPending, ActionVerify, models.VerificationVerified, nil},
		{"verify under review", models.VerificationUnderReview, ActionVerify, models.VerificationVerified, nil},
		{"verify verified", models.VerificationVerified, ActionVerify, models.VerificationVerified, nil},
		{"verify rejected overrides", models.VerificationRejected, ActionVerify, models.VerificationVerified, nil},
		{"reject pending", models.VerificationPending, ActionReject, models.VerificationRejected, nil},
		{"reject under review", models.VerificationUnderReview, ActionReject, models.VerificationRejected, nil},
		{"reject rejected", models.VerificationRejected, ActionReject, models.VerificationRejected, nil},
		{"reject verified overrides", models.VerificationVerified, ActionReject, models.VerificationRejected, nil},
		{"unknown action", models.VerificationPending, Action("escalate"), models.VerificationPending, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.current, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_LastCallDecides(t *testing.T) {
	sequences := [][]Action{
		{ActionVerify, ActionVerify},
		{ActionReject, ActionVerify},
		{ActionReview, ActionReject, ActionVerify},
		{ActionVerify, ActionReject, ActionReject},
	}
	for _, seq := range sequences {
		state := models.VerificationPending
		for _, a := range seq {
			next, err := Next(state, a)
			assert.NoError(t, err)
			state = next
		}
		want := models.VerificationVerified
		if seq[len(seq)-1] == ActionReject {
			want = models.VerificationRejected
		}
		assert.Equal(t, want, state, "sequence %v", seq)
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Verify ")
	assert.NoError(t, err)
	assert.Equal(t, ActionVerify, a)

	_, err = ParseAction("approve")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEligible(t *testing.T) {
	assert.False(t, Eligible(models.Case{}))
	assert.False(t, Eligible(models.Case{Evidence: []models.Evidence{{Type: models.EvidenceVideo}}}))
	assert.True(t, Eligible(models.Case{Evidence: []models.Evidence{{Type: models.EvidenceDocument}, {Type: models.EvidencePhoto}}}))
	assert.False(t, Eligible(models.Case{
		Type:     models.TypeLocationVerification,
		Evidence: []models.Evidence{{Type: models.EvidencePhoto}},
	}))
}
