package intake

import (
	"strings"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// Case types produced by the subject lookup
const (
	TypeIllegalMining  = "Illegal Mining"
	TypeWaterPollution = "Water Pollution"
	TypeEnvironmental  = "Environmental"
	TypeCommunity      = "Community"
	TypeSafety         = "Safety"
	TypeGeneral        = "General"
	TypeTechnical      = "Technical"
)

var subjectTypes = map[string]string{
	"illegal mining":       TypeIllegalMining,
	"water pollution":      TypeWaterPollution,
	"environmental":        TypeEnvironmental,
	"environmental damage": TypeEnvironmental,
	"forest":               TypeEnvironmental,
	"forest destruction":   TypeEnvironmental,
	"land":                 TypeEnvironmental,
	"land degradation":     TypeEnvironmental,
	"community impact":     TypeCommunity,
	"safety concerns":      TypeSafety,
	"general":              TypeGeneral,
	"general inquiry":      TypeGeneral,
	"other":                TypeGeneral,
	"technical":            TypeTechnical,
	"technical support":    TypeTechnical,
}

// TypeForSubject maps a report subject onto a case type, defaulting to General
func TypeForSubject(subject string) string {
	if t, ok := subjectTypes[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return t
	}
	return TypeGeneral
}

var (
	criticalKeywords = []string{"death", "poison", "severe", "massive", "widespread"}
	highKeywords     = []string{"urgent", "emergency", "immediate", "danger", "toxic", "health", "contamination"}
)

// InferPriority scores a report by keyword. Critical keywords win over High ones, and
// Illegal Mining and Water Pollution reports are at least High. Intake never returns Low;
// that level is only reachable by a manual edit.
func InferPriority(subject, message string) models.Priority {
	text := strings.ToLower(subject + " " + message)
	if containsAny(text, criticalKeywords) {
		return models.PriorityCritical
	}
	if containsAny(text, highKeywords) {
		return models.PriorityHigh
	}
	switch strings.TrimSpace(subject) {
	case TypeIllegalMining, TypeWaterPollution:
		return models.PriorityHigh
	}
	return models.PriorityMedium
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
