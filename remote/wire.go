package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// wireCase is a case record in the backend schema
type wireCase struct {
	CaseID       string                    `json:"caseId"`
	LegacyID     string                    `json:"id,omitempty"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	Region       string                    `json:"region"`
	Type         string                    `json:"type"`
	Status       string                    `json:"status"`
	Verification models.VerificationStatus `json:"verification,omitempty"`
	Priority     string                    `json:"priority"`
	AssignedTo   string                    `json:"assignedTo,omitempty"`
	Reporter     *wireReporter             `json:"reporter,omitempty"`
	Location     *models.Location          `json:"location,omitempty"`
	Evidence     []models.Evidence         `json:"evidence,omitempty"`
	ReviewedBy   string                    `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time                `json:"reviewedAt,omitempty"`
	ReviewNotes  string                    `json:"reviewNotes,omitempty"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}

type wireReporter struct {
	IsAnonymous bool   `json:"isAnonymous"`
	FullName    string `json:"fullName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
}

// ID returns the backend id, accepting the older "id" field
func (w wireCase) ID() string {
	if w.CaseID != "" {
		return w.CaseID
	}
	return w.LegacyID
}

func (w wireCase) toCase() models.Case {
	c := models.Case{
		ID:           w.ID(),
		Title:        w.Title,
		Description:  w.Description,
		Type:         w.Type,
		Verification: w.Verification,
		AssignedTo:   w.AssignedTo,
		Location:     w.Location,
		Evidence:     w.Evidence,
		ReviewedBy:   w.ReviewedBy,
		ReviewedAt:   w.ReviewedAt,
		ReviewNotes:  w.ReviewNotes,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
		Source:       models.OriginRemote,
	}

	if r, ok := models.ParseRegion(w.Region); ok {
		c.Region = r
	} else {
		c.Region = models.Region(w.Region)
	}

	status, err := models.NormalizeCaseStatus(w.Status)
	if err != nil {
		zap.S().Warnw("remote case has unknown status, treating as New",
			"caseId", c.ID,
			"status", w.Status,
		)
		status = models.StatusNew
	}
	c.Status = status

	priority, err := models.ParsePriority(w.Priority)
	if err != nil {
		priority = models.PriorityMedium
	}
	c.Priority = priority

	if w.Reporter != nil {
		c.Reporter = models.Reporter{
			FullName:    w.Reporter.FullName,
			PhoneNumber: w.Reporter.PhoneNumber,
			Email:       w.Reporter.Email,
		}
		c.Reporter.Anonymous = c.Reporter.FullName == "" && c.Reporter.PhoneNumber == "" && c.Reporter.Email == ""
	} else {
		c.Reporter.Anonymous = true
	}

	if c.Evidence == nil {
		c.Evidence = []models.Evidence{}
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		c.UpdatedAt = c.CreatedAt
	}
	return c
}

func fromCase(c models.Case) wireCase {
	return wireCase{
		CaseID:       c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Region:       string(c.Region),
		Type:         c.Type,
		Status:       string(c.Status),
		Verification: c.Verification,
		Priority:     string(c.Priority),
		AssignedTo:   c.AssignedTo,
		Reporter: &wireReporter{
			IsAnonymous: c.Reporter.Anonymous,
			FullName:    c.Reporter.FullName,
			PhoneNumber: c.Reporter.PhoneNumber,
			Email:       c.Reporter.Email,
		},
		Location:    c.Location,
		Evidence:    c.Evidence,
		ReviewedBy:  c.ReviewedBy,
		ReviewedAt:  c.ReviewedAt,
		ReviewNotes: c.ReviewNotes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// decodeCaseList accepts a bare array or a {"cases": [...]} envelope
func decodeCaseList(raw json.RawMessage) ([]wireCase, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var records []wireCase
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decoding case list: %w", err)
		}
		return records, nil
	}
	var envelope struct {
		Cases []wireCase `json:"cases"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decoding case envelope: %w", err)
	}
	return envelope.Cases, nil
}

// submission is the report intake payload for a locally built case. The proposed case id
// lets the backend keep the id the reporter was shown.
type submission struct {
	models.ReportSubmission
	CaseID    string          `json:"caseId"`
	Priority  models.Priority `json:"priority"`
	CreatedAt time.Time       `json:"createdAt"`
}

func submissionFor(c models.Case) submission {
	return submission{
		ReportSubmission: models.ReportSubmission{
			FullName:    c.Reporter.FullName,
			PhoneNumber: c.Reporter.PhoneNumber,
			Email:       c.Reporter.Email,
			Region:      string(c.Region),
			Subject:     subjectOf(c),
			Message:     c.Description,
			IsAnonymous: c.Reporter.Anonymous,
			Location:    c.Location,
			Evidence:    c.Evidence,
		},
		CaseID:    c.ID,
		Priority:  c.Priority,
		CreatedAt: c.CreatedAt,
	}
}

// subjectOf recovers the submitted subject from the "<subject> - <region>" title
func subjectOf(c models.Case) string {
	suffix := " - " + string(c.Region)
	if strings.HasSuffix(c.Title, suffix) {
		return strings.TrimSuffix(c.Title, suffix)
	}
	if c.Type != "" {
		return c.Type
	}
	return c.Title
}

type submitResponse struct {
	Success *bool  `json:"success"`
	CaseID  string `json:"caseId"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (r submitResponse) id() string {
	if r.CaseID != "" {
		return r.CaseID
	}
	return r.ID
}
