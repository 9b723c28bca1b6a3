package verification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/intake"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/localstore"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
)

// Cases is the reconciled case view the workflow reads from and writes through
type Cases interface {
	Snapshot() reconcile.Snapshot
	Find(ctx context.Context, id string) (models.Case, error)
	Save(ctx context.Context, c models.Case) (models.Case, error)
	Submit(ctx context.Context, c models.Case) (models.Case, error)
}

// Service applies reviewer actions to cases
type Service struct {
	cases Cases
	now   func() time.Time
}

// NewService creates a verification service. A nil now uses the wall clock.
func NewService(cases Cases, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{cases: cases, now: now}
}

// Queue returns the eligible cases in the current view, oldest first
func (s *Service) Queue(ctx context.Context) []models.Case {
	snap := s.cases.Snapshot()
	queue := make([]models.Case, 0, len(snap.Cases))
	for _, c := range snap.Cases {
		if Eligible(c) {
			queue = append(queue, c)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if !queue[i].CreatedAt.Equal(queue[j].CreatedAt) {
			return queue[i].CreatedAt.Before(queue[j].CreatedAt)
		}
		return queue[i].ID < queue[j].ID
	})
	return queue
}

// Review marks a case as under review
func (s *Service) Review(ctx context.Context, id, reviewer, notes string) (models.Case, error) {
	return s.Apply(ctx, id, ActionReview, reviewer, notes)
}

// Verify accepts a case's evidence
func (s *Service) Verify(ctx context.Context, id, reviewer, notes string) (models.Case, error) {
	return s.Apply(ctx, id, ActionVerify, reviewer, notes)
}

// Reject refuses a case's evidence
func (s *Service) Reject(ctx context.Context, id, reviewer, notes string) (models.Case, error) {
	return s.Apply(ctx, id, ActionReject, reviewer, notes)
}

// Apply runs action on the case, mirrors the result onto the case status and saves it. A
// *localstore.PersistenceError is returned with the updated case when only the local write
// failed.
func (s *Service) Apply(ctx context.Context, id string, action Action, reviewer, notes string) (models.Case, error) {
	c, err := s.cases.Find(ctx, id)
	if err != nil {
		return models.Case{}, err
	}
	if !Eligible(c) {
		return c, fmt.Errorf("%w: %s", ErrNotEligible, id)
	}
	next, err := Next(c.Verification, action)
	if err != nil {
		return c, err
	}

	c.Verification = next
	if st, ok := next.CaseStatus(); ok {
		c.Status = st
	}
	now := s.now().UTC()
	c.ReviewedBy = reviewer
	c.ReviewedAt = &now
	if notes = strings.TrimSpace(notes); notes != "" {
		c.ReviewNotes = notes
	}

	saved, err := s.cases.Save(ctx, c)
	var pe *localstore.PersistenceError
	if err != nil && !errors.As(err, &pe) {
		return c, err
	}
	zap.S().Infow("verification action applied",
		"caseId", id,
		"action", action,
		"verification", next,
		"reviewer", reviewer,
	)
	return saved, err
}

// LocationRequest asks for a location verification record. Region may be empty, in which
// case it is resolved from the GPS fix or the referenced case.
type LocationRequest struct {
	CaseID   string
	Region   string
	Metadata models.ImageMetadata
	Evidence *models.Evidence
	Reviewer string
	Notes    string
}

// VerifyLocation records a verified location as a new audit case. The referenced case is
// never modified.
func (s *Service) VerifyLocation(ctx context.Context, req LocationRequest) (models.Case, error) {
	var ref *models.Case
	if id := strings.TrimSpace(req.CaseID); id != "" {
		c, err := s.cases.Find(ctx, id)
		if err != nil {
			return models.Case{}, err
		}
		ref = &c
	}

	region, err := resolveRegion(req, ref)
	if err != nil {
		return models.Case{}, err
	}

	now := s.now().UTC()
	md := req.Metadata
	c := models.Case{
		ID:            intake.NewID(now),
		Title:         fmt.Sprintf("%s - %s", models.TypeLocationVerification, region),
		Description:   locationDescription(req, ref),
		Region:        region,
		Type:          models.TypeLocationVerification,
		Status:        models.StatusVerified,
		Verification:  models.VerificationVerified,
		Priority:      models.PriorityMedium,
		Reporter:      models.Reporter{Anonymous: true},
		Location:      region.DefaultLocation(),
		Evidence:      []models.Evidence{},
		ImageMetadata: &md,
		ReviewedBy:    req.Reviewer,
		ReviewedAt:    &now,
		ReviewNotes:   strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
		Source:        models.OriginLocalPending,
	}
	if ref != nil {
		c.Priority = ref.Priority
	}
	if md.GPS != nil {
		c.Location = &models.Location{Latitude: md.GPS.Latitude, Longitude: md.GPS.Longitude}
	}
	if req.Evidence != nil {
		c.Evidence = append(c.Evidence, *req.Evidence)
	}

	return s.cases.Submit(ctx, c)
}

func resolveRegion(req LocationRequest, ref *models.Case) (models.Region, error) {
	if strings.TrimSpace(req.Region) != "" {
		r, ok := models.ParseRegion(req.Region)
		if !ok {
			return "", &intake.ValidationError{Field: "region", Message: fmt.Sprintf("unknown region %q", req.Region)}
		}
		return r, nil
	}
	if gps := req.Metadata.GPS; gps != nil {
		if r, ok := models.NearestRegion(gps.Latitude, gps.Longitude); ok {
			return r, nil
		}
	}
	if ref != nil && ref.Region != "" {
		return ref.Region, nil
	}
	return "", &intake.ValidationError{Field: "region", Message: "region is required when the image has no GPS fix in Ghana"}
}

func locationDescription(req LocationRequest, ref *models.Case) string {
	var b strings.Builder
	b.WriteString("Location verified from image")
	if req.Metadata.FileName != "" {
		b.WriteString(" " + req.Metadata.FileName)
	}
	if ref != nil {
		b.WriteString(" for case " + ref.ID)
	}
	if gps := req.Metadata.GPS; gps != nil {
		fmt.Fprintf(&b, " at %.5f, %.5f", gps.Latitude, gps.Longitude)
	}
	if req.Metadata.CapturedAt != nil {
		b.WriteString(", captured " + req.Metadata.CapturedAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}
