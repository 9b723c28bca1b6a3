// Package verification runs the evidence review workflow for cases that carry photos.
package verification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

var (
	// ErrNotEligible is returned when a case has no photo evidence to review
	ErrNotEligible = errors.New("case has no photo evidence")
	// ErrInvalidTransition is returned when an action does not apply to the current state
	ErrInvalidTransition = errors.New("invalid verification transition")
)

// Action is a reviewer action
type Action string

// Reviewer actions
const (
	ActionReview Action = "review"
	ActionVerify Action = "verify"
	ActionReject Action = "reject"
)

// ParseAction accepts an action name in any case
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionReview, ActionVerify, ActionReject:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, s)
}

// Next returns the state reached by applying action to current. A case that was never
// enrolled counts as PendingVerification. verify and reject apply from any state, so
// repeating either is a no-op and the last one called decides the outcome.
func Next(current models.VerificationStatus, action Action) (models.VerificationStatus, error) {
	if current == "" {
		current = models.VerificationPending
	}
	switch action {
	case ActionReview:
		switch current {
		case models.VerificationPending, models.VerificationUnderReview:
			return models.VerificationUnderReview, nil
		}
		return current, fmt.Errorf("%w: cannot review a case that is %s", ErrInvalidTransition, current)
	case ActionVerify:
		return models.VerificationVerified, nil
	case ActionReject:
		return models.VerificationRejected, nil
	}
	return current, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
}

// Eligible reports whether a case belongs in the verification queue. Location verification
// records are audit entries and are never reviewed themselves.
func Eligible(c models.Case) bool {
	return c.Type != models.TypeLocationVerification && c.HasPhoto()
}
