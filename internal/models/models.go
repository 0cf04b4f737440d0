package models

import (
	"encoding/base64"
	"time"
)

// ReviewState is where a candidate sits in the accept/reject workflow
type ReviewState string

const (
	ReviewIdle     ReviewState = "idle"
	ReviewAccepted ReviewState = "accepted"
	ReviewRejected ReviewState = "rejected"
)

// CandidateItem is one collectible the vision model detected in an image
type CandidateItem struct {
	Name                string      `json:"name"`
	Series              string      `json:"series"`
	ItemNumber          *string     `json:"itemNumber"`
	ModelNumber         *string     `json:"modelNumber"`
	YearIntroduced      *int        `json:"yearIntroduced"`
	YearRetired         *int        `json:"yearRetired"`
	RetiredStatus       *string     `json:"retiredStatus"`
	EstimatedCondition  string      `json:"estimatedCondition"`
	EstimatedValueRange string      `json:"estimatedValueRange"`
	Description         string      `json:"description"`
	IsGenuine           bool        `json:"isGenuine"`
	ConfidenceScore     float64     `json:"confidenceScore"`
	IsLimitedEdition    bool        `json:"isLimitedEdition"`
	IsSigned            bool        `json:"isSigned"`
	ReviewState         ReviewState `json:"reviewState"`
}

// AlternativeCandidate is offered after the user rejects a candidate
type AlternativeCandidate struct {
	Name            string   `json:"name"`
	Series          string   `json:"series"`
	Reason          string   `json:"reason"`
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
}

// ImagePayload is the encoded upload shared by every candidate of a session
type ImagePayload struct {
	Data     string `json:"-"`
	MIMEType string `json:"mimeType"`
}

// NewImagePayload encodes raw image bytes
func NewImagePayload(raw []byte, mimeType string) *ImagePayload {
	return &ImagePayload{
		Data:     base64.StdEncoding.EncodeToString(raw),
		MIMEType: mimeType,
	}
}

// Bytes decodes the payload
func (p *ImagePayload) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// Size is the decoded length in bytes
func (p *ImagePayload) Size() int {
	return base64.StdEncoding.DecodedLen(len(p.Data)) - padding(p.Data)
}

func padding(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '='; i-- {
		n++
	}
	return n
}

// ReviewEntry tracks one candidate of a session through review
type ReviewEntry struct {
	Item            CandidateItem          `json:"item"`
	Alternatives    []AlternativeCandidate `json:"alternatives,omitempty"`
	AwaitingContext bool                   `json:"awaitingContext"`
	LookupError     string                 `json:"lookupError,omitempty"`
	Pending         bool                   `json:"pending"`
}

// Session is the batch of candidates produced from one upload
type Session struct {
	ID         string        `json:"id"`
	Image      *ImagePayload `json:"image,omitempty"`
	Entries    []ReviewEntry `json:"entries"`
	Generation int           `json:"generation"`
	Provider   string        `json:"provider,omitempty"`
	Model      string        `json:"model,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Clone returns a copy that shares nothing mutable with s. The image is
// immutable and stays shared.
func (s *Session) Clone() *Session {
	c := *s
	c.Entries = make([]ReviewEntry, len(s.Entries))
	for i, e := range s.Entries {
		c.Entries[i] = e.Clone()
	}
	return &c
}

// Clone copies the entry and its alternatives
func (e ReviewEntry) Clone() ReviewEntry {
	if e.Alternatives != nil {
		e.Alternatives = append([]AlternativeCandidate(nil), e.Alternatives...)
	}
	return e
}

// Source is a grounding citation
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// MarketReport summarises current market activity for an item
type MarketReport struct {
	Summary string   `json:"summary"`
	Sources []Source `json:"sources"`
}

// DataTag holds what could be read from a manufacturer label
type DataTag struct {
	Manufacturer   *string        `json:"manufacturer"`
	Brand          *string        `json:"brand"`
	ModelNumber    *string        `json:"modelNumber"`
	SerialNumber   *string        `json:"serialNumber"`
	ProductionDate *string        `json:"productionDate"`
	EstimatedValue *float64       `json:"estimatedValue"`
	AdditionalInfo map[string]any `json:"additionalInfo,omitempty"`
}

// BarcodeResult is the outcome of a UPC lookup
type BarcodeResult struct {
	Found          bool     `json:"found"`
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Brand          *string  `json:"brand,omitempty"`
	ModelNumber    *string  `json:"modelNumber,omitempty"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`
	EstimationDate *string  `json:"estimationDate,omitempty"`
	Category       *string  `json:"category,omitempty"`
}
