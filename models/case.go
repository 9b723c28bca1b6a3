package models

import "time"

// Origin records which store produced a case. It only matters to reconciliation.
type Origin string

// Case origins
const (
	OriginRemote       Origin = "remote"
	OriginLocalPending Origin = "local-pending"
)

// EvidenceType classifies an evidence attachment
type EvidenceType string

// Evidence types
const (
	EvidencePhoto    EvidenceType = "Photo"
	EvidenceVideo    EvidenceType = "Video"
	EvidenceAudio    EvidenceType = "Audio"
	EvidenceDocument EvidenceType = "Document"
)

// TypeLocationVerification is the case type of location verification audit records
const TypeLocationVerification = "Location Verification"

// Case holds the structure for the cases collection in mongo and the local pending queue
type Case struct {
	ID            string             `json:"id" bson:"_id"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Region        Region             `json:"region" bson:"region"`
	Type          string             `json:"type" bson:"type"`
	Status        CaseStatus         `json:"status" bson:"status"`
	Verification  VerificationStatus `json:"verification,omitempty" bson:"verification,omitempty"`
	Priority      Priority           `json:"priority" bson:"priority"`
	AssignedTo    string             `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Reporter      Reporter           `json:"reporter" bson:"reporter"`
	Location      *Location          `json:"location,omitempty" bson:"location,omitempty"`
	Evidence      []Evidence         `json:"evidence" bson:"evidence"`
	ImageMetadata *ImageMetadata     `json:"imageMetadata,omitempty" bson:"imageMetadata,omitempty"`
	ReviewedBy    string             `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time         `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ReviewNotes   string             `json:"reviewNotes,omitempty" bson:"reviewNotes,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
	Source        Origin             `json:"-" bson:"-"`
	// SyncedAs is the remote id of a queued case the remote store has already accepted
	SyncedAs string `json:"syncedAs,omitempty" bson:"-"`
}

// Reporter holds the submitter's identity. Anonymous reporters carry no contact fields.
type Reporter struct {
	Anonymous   bool   `json:"anonymous" bson:"anonymous"`
	FullName    string `json:"fullName,omitempty" bson:"fullName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
}

// Location is a point with an optional human readable address
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
}

// Evidence is a single attachment on a case
type Evidence struct {
	Type        EvidenceType `json:"type" bson:"type"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	FileURL     string       `json:"fileUrl" bson:"fileUrl"`
	FileName    string       `json:"fileName" bson:"fileName"`
}

// HasPhoto reports whether any attachment is a photo
func (c Case) HasPhoto() bool {
	for _, e := range c.Evidence {
		if e.Type == EvidencePhoto {
			return true
		}
	}
	return false
}

// Touch bumps UpdatedAt, never letting it fall behind CreatedAt
func (c *Case) Touch(now time.Time) {
	if now.Before(c.CreatedAt) {
		now = c.CreatedAt
	}
	c.UpdatedAt = now
}
