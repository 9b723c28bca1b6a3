package models

import (
	"fmt"
	"strings"
)

// CaseStatus is the public case lifecycle status
type CaseStatus string

// Canonical case statuses
const (
	StatusNew                CaseStatus = "New"
	StatusOpen               CaseStatus = "Open"
	StatusUnderInvestigation CaseStatus = "Under Investigation"
	StatusInProgress         CaseStatus = "In Progress"
	StatusPending            CaseStatus = "Pending"
	StatusResolved           CaseStatus = "Resolved"
	StatusClosed             CaseStatus = "Closed"
	StatusRejected           CaseStatus = "Rejected"
	StatusVerified           CaseStatus = "Verified"
)

// caseStatusSynonyms maps every accepted spelling, lower-cased, onto the canonical status.
// Legacy dashboards used Solved/Completed for Resolved, Active for In Progress and
// Investigating for Under Investigation.
var caseStatusSynonyms = map[string]CaseStatus{
	"new":                 StatusNew,
	"open":                StatusOpen,
	"under investigation": StatusUnderInvestigation,
	"investigating":       StatusUnderInvestigation,
	"in progress":         StatusInProgress,
	"in_progress":         StatusInProgress,
	"active":              StatusInProgress,
	"pending":             StatusPending,
	"resolved":            StatusResolved,
	"solved":              StatusResolved,
	"completed":           StatusResolved,
	"closed":              StatusClosed,
	"rejected":            StatusRejected,
	"dismissed":           StatusRejected,
	"verified":            StatusVerified,
}

// NormalizeCaseStatus resolves a status or one of its legacy synonyms to the canonical value
func NormalizeCaseStatus(s string) (CaseStatus, error) {
	st, ok := caseStatusSynonyms[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown case status %q", s)
	}
	return st, nil
}

// caseTransitions lists the manual status edits allowed from each status.
var caseTransitions = map[CaseStatus][]CaseStatus{
	StatusNew:                {StatusOpen, StatusUnderInvestigation, StatusInProgress, StatusPending, StatusRejected, StatusClosed},
	StatusOpen:               {StatusUnderInvestigation, StatusInProgress, StatusPending, StatusResolved, StatusRejected, StatusClosed},
	StatusUnderInvestigation: {StatusInProgress, StatusPending, StatusResolved, StatusVerified, StatusRejected, StatusClosed},
	StatusInProgress:         {StatusPending, StatusResolved, StatusClosed, StatusUnderInvestigation},
	StatusPending:            {StatusOpen, StatusUnderInvestigation, StatusInProgress, StatusResolved, StatusClosed},
	StatusVerified:           {StatusInProgress, StatusResolved, StatusClosed},
	StatusResolved:           {StatusClosed},
}

// CanTransition reports whether a manual edit may move a case from one status to another.
// Re-asserting the current status is always allowed.
func (s CaseStatus) CanTransition(to CaseStatus) bool {
	if s == to {
		return true
	}
	for _, allowed := range caseTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// VerificationStatus is the evidence review lifecycle status
type VerificationStatus string

// Verification statuses
const (
	VerificationPending     VerificationStatus = "PendingVerification"
	VerificationUnderReview VerificationStatus = "UnderReview"
	VerificationVerified    VerificationStatus = "Verified"
	VerificationRejected    VerificationStatus = "Rejected"
)

// Terminal reports whether no further review is expected
func (v VerificationStatus) Terminal() bool {
	return v == VerificationVerified || v == VerificationRejected
}

// CaseStatus maps a verification status onto the shared case record. The bool is false when
// the verification status leaves the case status untouched.
func (v VerificationStatus) CaseStatus() (CaseStatus, bool) {
	switch v {
	case VerificationUnderReview:
		return StatusUnderInvestigation, true
	case VerificationVerified:
		return StatusVerified, true
	case VerificationRejected:
		return StatusRejected, true
	}
	return "", false
}

// Priority is the computed case severity
type Priority string

// Priorities, lowest first
const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Rank orders priorities; unknown values rank below Low
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

// ParsePriority accepts any casing of a priority name
func ParsePriority(s string) (Priority, error) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}
