package reconcile

import "github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"

// Filter narrows a case list. Zero fields match everything.
type Filter struct {
	Region   models.Region
	Status   models.CaseStatus
	Priority models.Priority
	Type     string
}

// Apply returns the cases matching every set field
func (f Filter) Apply(cases []models.Case) []models.Case {
	out := make([]models.Case, 0, len(cases))
	for _, c := range cases {
		if f.Region != "" && c.Region != f.Region {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Stats summarizes a case list for the dashboard
type Stats struct {
	Total                int                       `json:"total"`
	Pending              int                       `json:"pendingSync"`
	AwaitingVerification int                       `json:"awaitingVerification"`
	ByStatus             map[models.CaseStatus]int `json:"byStatus"`
	ByPriority           map[models.Priority]int   `json:"byPriority"`
	ByRegion             map[models.Region]int     `json:"byRegion"`
}

// Summarize counts cases by status, priority and region
func Summarize(cases []models.Case) Stats {
	s := Stats{
		Total:      len(cases),
		ByStatus:   map[models.CaseStatus]int{},
		ByPriority: map[models.Priority]int{},
		ByRegion:   map[models.Region]int{},
	}
	for _, c := range cases {
		s.ByStatus[c.Status]++
		s.ByPriority[c.Priority]++
		s.ByRegion[c.Region]++
		if c.Source == models.OriginLocalPending {
			s.Pending++
		}
		if c.HasPhoto() && !c.Verification.Terminal() {
			s.AwaitingVerification++
		}
	}
	return s
}
