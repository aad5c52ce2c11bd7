package models

import "time"

// Gender values accepted in demographics
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// Tally dimensions
const (
	DimensionOverall     = "overall"
	DimensionSemanticKey = "semantic_key"
	DimensionRegion      = "region"
	DimensionAgeBand     = "age_band"
	DimensionGender      = "gender"
	DimensionTimeBucket  = "time_bucket"
)

// Time bucket granularity
const (
	BucketHour = "hour"
	BucketDay  = "day"
)

// Reserved semantic key codes. A legacy option_ref inside this range is a
// semantic key of the requested subject; anything above it is a global
// option id. Catalog option ids must therefore start above ReservedKeyMax,
// and the range must be revisited whenever a new canonical key is added.
const (
	ReservedKeyMin int64 = 1
	ReservedKeyMax int64 = 4
)

// IsReservedKey reports whether ref falls in the reserved semantic key range
func IsReservedKey(ref int64) bool {
	return ref >= ReservedKeyMin && ref <= ReservedKeyMax
}

// Request types

// FingerprintRequest is the wire form of identity.Fingerprint
type FingerprintRequest struct {
	UserAgent        string `json:"user_agent"`
	ScreenResolution string `json:"screen_resolution,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	Language         string `json:"language,omitempty"`
	Platform         string `json:"platform,omitempty"`
}

type IdentityRequest struct {
	Fingerprint FingerprintRequest `json:"fingerprint"`
}

// OptionRef is the legacy ambiguous field; SemanticKey/OptionID are the
// explicit two-field form. Exactly one form may be used per request.
type CastVoteRequest struct {
	OptionRef    *int64              `json:"option_ref,omitempty"`
	SemanticKey  *string             `json:"semantic_key,omitempty"`
	OptionID     *int64              `json:"option_id,omitempty"`
	Fingerprint  *FingerprintRequest `json:"fingerprint,omitempty"`
	Demographics *Demographics       `json:"demographics,omitempty"`
}

// Response types

type IdentityResponse struct {
	IdentitySet bool `json:"identity_set"`
}

type CastVoteResponse struct {
	VoteID      string `json:"vote_id"`
	SubjectID   int64  `json:"subject_id"`
	OptionID    int64  `json:"option_id"`
	SemanticKey string `json:"semantic_key"`
}

// Domain types

type Subject struct {
	ID        int64      `json:"id"`
	Label     string     `json:"label"`
	CreatedAt time.Time  `json:"created_at"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// Open reports whether t falls inside the subject's validity window.
// A missing bound is unbounded on that side.
func (s Subject) Open(t time.Time) bool {
	if s.StartsAt != nil && t.Before(*s.StartsAt) {
		return false
	}
	if s.EndsAt != nil && !t.Before(*s.EndsAt) {
		return false
	}
	return true
}

type Option struct {
	ID           int64  `json:"id"`
	SubjectID    int64  `json:"subject_id"`
	SemanticKey  string `json:"semantic_key"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"display_order"`
}

// Target is the canonical vote target produced by the resolver
type Target struct {
	SubjectID   int64
	OptionID    int64
	SemanticKey string
}

type Demographics struct {
	Region  string `json:"region,omitempty"`
	AgeBand string `json:"age_band,omitempty"`
	Gender  string `json:"gender,omitempty"`
}

type Vote struct {
	ID           string       `json:"id"`
	Identity     string       `json:"-"` // Never expose in JSON
	SubjectID    int64        `json:"subject_id"`
	OptionID     int64        `json:"option_id"`
	SemanticKey  string       `json:"semantic_key"`
	Demographics Demographics `json:"demographics"`
	IPHash       *string      `json:"-"` // Never expose in JSON
	CreatedAt    time.Time    `json:"created_at"`
}

// Statistics types

type Breakdown struct {
	Key        string  `json:"key"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Snapshot struct {
	SubjectID     int64       `json:"subject_id"`
	Overall       int64       `json:"overall"`
	BySemanticKey []Breakdown `json:"by_semantic_key"`
	ByRegion      []Breakdown `json:"by_region"`
	ByAgeBand     []Breakdown `json:"by_age_band"`
	ByGender      []Breakdown `json:"by_gender"`
	ByTimeBucket  []Breakdown `json:"by_time_bucket"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
