// Package intake turns citizen report submissions into canonical cases.
package intake

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// ValidationError reports a missing or malformed submission field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Build validates a submission and constructs a new local-pending case from it.
// Persistence is left to the caller.
func Build(sub models.ReportSubmission, now time.Time) (models.Case, error) {
	regionName := strings.TrimSpace(sub.Region)
	subject := strings.TrimSpace(sub.Subject)
	message := strings.TrimSpace(sub.Message)

	switch {
	case regionName == "":
		return models.Case{}, &ValidationError{Field: "region", Message: "is required"}
	case subject == "":
		return models.Case{}, &ValidationError{Field: "subject", Message: "is required"}
	case message == "":
		return models.Case{}, &ValidationError{Field: "message", Message: "is required"}
	}
	region, ok := models.ParseRegion(regionName)
	if !ok {
		return models.Case{}, &ValidationError{Field: "region", Message: fmt.Sprintf("unknown region %q", regionName)}
	}

	now = now.UTC()
	c := models.Case{
		ID:          NewID(now),
		Title:       fmt.Sprintf("%s - %s", subject, region),
		Description: message,
		Region:      region,
		Type:        TypeForSubject(subject),
		Status:      models.StatusNew,
		Priority:    InferPriority(subject, message),
		Reporter:    reporterFor(sub),
		Location:    sub.Location,
		Evidence:    append([]models.Evidence(nil), sub.Evidence...),
		CreatedAt:   now,
		UpdatedAt:   now,
		Source:      models.OriginLocalPending,
	}
	if c.Location == nil {
		c.Location = region.DefaultLocation()
	}
	if c.Evidence == nil {
		c.Evidence = []models.Evidence{}
	}
	if c.HasPhoto() {
		c.Verification = models.VerificationPending
	}
	return c, nil
}

// IsAnonymous is true iff no identifying contact field was supplied
func IsAnonymous(sub models.ReportSubmission) bool {
	return strings.TrimSpace(sub.FullName) == "" &&
		strings.TrimSpace(sub.PhoneNumber) == "" &&
		strings.TrimSpace(sub.Email) == ""
}

func reporterFor(sub models.ReportSubmission) models.Reporter {
	if IsAnonymous(sub) {
		return models.Reporter{Anonymous: true}
	}
	return models.Reporter{
		FullName:    strings.TrimSpace(sub.FullName),
		PhoneNumber: strings.TrimSpace(sub.PhoneNumber),
		Email:       strings.TrimSpace(sub.Email),
	}
}

var ids struct {
	mu   sync.Mutex
	last int64
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID returns a CASE-<millis>-<suffix> identifier. The millisecond part is strictly
// increasing within the process, so two calls never return the same id.
func NewID(now time.Time) string {
	ids.mu.Lock()
	ms := now.UnixMilli()
	if ms <= ids.last {
		ms = ids.last + 1
	}
	ids.last = ms
	ids.mu.Unlock()

	suffix := make([]byte, 9)
	base := big.NewInt(int64(len(idAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			// the millisecond counter alone keeps ids unique
			n = big.NewInt(int64(i))
		}
		suffix[i] = idAlphabet[n.Int64()]
	}
	return fmt.Sprintf("CASE-%d-%s", ms, suffix)
}
