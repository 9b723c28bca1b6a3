package intake_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/intake"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestBuild_WaterPollutionScenario(t *testing.T) {
	c, err := intake.Build(models.ReportSubmission{
		Region:      "Western",
		Subject:     "Water Pollution",
		Message:     "toxic contamination near river",
		IsAnonymous: true,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "Water Pollution", c.Type)
	assert.Equal(t, models.PriorityHigh, c.Priority)
	assert.Equal(t, models.StatusNew, c.Status)
	assert.True(t, c.Reporter.Anonymous)
	assert.Equal(t, models.OriginLocalPending, c.Source)
	assert.Equal(t, models.RegionWestern, c.Region)
	assert.True(t, strings.HasPrefix(c.ID, "CASE-"))
	assert.Equal(t, strings.ToUpper(c.ID), c.ID)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
	require.NotNil(t, c.Location)
	assert.Equal(t, "Sekondi-Takoradi, Western", c.Location.Address)
	assert.Empty(t, c.Verification)
}

func TestBuild_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		sub   models.ReportSubmission
		field string
	}{
		{"region", models.ReportSubmission{Subject: "Other", Message: "x"}, "region"},
		{"blank subject", models.ReportSubmission{Region: "Ashanti", Subject: "   ", Message: "x"}, "subject"},
		{"message", models.ReportSubmission{Region: "Ashanti", Subject: "Other", Message: "\t"}, "message"},
		{"unknown region", models.ReportSubmission{Region: "Lagos", Subject: "Other", Message: "x"}, "region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := intake.Build(tt.sub, now)
			var verr *intake.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBuild_Anonymity(t *testing.T) {
	base := models.ReportSubmission{FullName: "", PhoneNumber: "", Email: "", Region: "Ashanti", Subject: "Other", Message: "x"}
	c, err := intake.Build(base, now)
	require.NoError(t, err)
	assert.True(t, c.Reporter.Anonymous)

	for _, mutate := range []func(*models.ReportSubmission){
		func(s *models.ReportSubmission) { s.FullName = "Kwame Mensah" },
		func(s *models.ReportSubmission) { s.PhoneNumber = "+233200000000" },
		func(s *models.ReportSubmission) { s.Email = "kmensah@example.com" },
	} {
		sub := base
		mutate(&sub)
		c, err := intake.Build(sub, now)
		require.NoError(t, err)
		assert.False(t, c.Reporter.Anonymous)
	}
}

func TestBuild_AnonymousFlagDoesNotHideContactDetails(t *testing.T) {
	c, err := intake.Build(models.ReportSubmission{
		FullName: "Ama Owusu", Region: "Eastern", Subject: "Other", Message: "x", IsAnonymous: true,
	}, now)
	require.NoError(t, err)
	assert.False(t, c.Reporter.Anonymous)
	assert.Equal(t, "Ama Owusu", c.Reporter.FullName)
}

func TestBuild_PhotoEvidenceEntersVerification(t *testing.T) {
	c, err := intake.Build(models.ReportSubmission{
		Region: "Ashanti", Subject: "Illegal Mining", Message: "pits near Offin river",
		Evidence: []models.Evidence{{Type: models.EvidencePhoto, FileURL: "/uploads/a.jpg", FileName: "a.jpg"}},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, c.Verification)
	assert.Len(t, c.Evidence, 1)
}

func TestInferPriority(t *testing.T) {
	assert.Equal(t, models.PriorityCritical, intake.InferPriority("Illegal Mining", "there is severe contamination"))
	assert.Equal(t, models.PriorityHigh, intake.InferPriority("Illegal Mining", "excavators at night"))
	assert.Equal(t, models.PriorityHigh, intake.InferPriority("Other", "this is an emergency"))
	assert.Equal(t, models.PriorityMedium, intake.InferPriority("Other", "question about the programme"))
	assert.Equal(t, models.PriorityCritical, intake.InferPriority("Community Impact", "WIDESPREAD damage"))
	assert.Equal(t, models.PriorityMedium, intake.InferPriority("illegal mining", "lowercase subject is not the exact match"))
}

func TestTypeForSubject(t *testing.T) {
	assert.Equal(t, intake.TypeEnvironmental, intake.TypeForSubject("Forest Destruction"))
	assert.Equal(t, intake.TypeCommunity, intake.TypeForSubject("Community Impact"))
	assert.Equal(t, intake.TypeSafety, intake.TypeForSubject("safety concerns"))
	assert.Equal(t, intake.TypeTechnical, intake.TypeForSubject("Technical Support"))
	assert.Equal(t, intake.TypeGeneral, intake.TypeForSubject("Other"))
	assert.Equal(t, intake.TypeGeneral, intake.TypeForSubject("Something new"))
}

func TestNewID_UniqueWithinProcess(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := intake.NewID(now)
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
