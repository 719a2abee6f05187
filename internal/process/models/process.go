// Package models defines the case-file aggregate: processes, their
// append-only movement ledger, and explicit access grants.
package models

import (
	"fmt"
	"strings"
	"time"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
)

// AccessTier is the visibility level of a process.
type AccessTier string

const (
	TierPublic       AccessTier = "public"
	TierRestricted   AccessTier = "restricted"
	TierConfidential AccessTier = "confidential"
)

var validTiers = map[AccessTier]bool{
	TierPublic:       true,
	TierRestricted:   true,
	TierConfidential: true,
}

// ParseAccessTier constructs an AccessTier from external input.
func ParseAccessTier(s string) (AccessTier, error) {
	t := AccessTier(strings.ToLower(strings.TrimSpace(s)))
	if !validTiers[t] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid access tier: "+s)
	}
	return t, nil
}

// Process is the case file.
//
// Invariants:
//   - Number is unique per calendar year, format NN/YYYY
//   - AccessTier is immutable after creation
//   - There is no stored "current sector": location is always derived from
//     the movement ledger
//   - Exactly one initial movement (from = to = origin) exists from creation
type Process struct {
	ID              id.ProcessID      `json:"id"`
	Number          string            `json:"number"`
	Type            string            `json:"type"`
	Specification   string            `json:"specification"`
	InterestedParty string            `json:"interested_party"`
	OriginSector    id.SectorID       `json:"origin_sector"`
	Creator         id.CollaboratorID `json:"creator"`
	AccessTier      AccessTier        `json:"access_tier"`
	Archived        bool              `json:"archived"`
	CreatedAt       time.Time         `json:"created_at"`
}

// FormatNumber renders the sequential human-readable number for the nth
// process of a year: zero-padded to two digits, slash, year.
func FormatNumber(sequence int, year int) string {
	return fmt.Sprintf("%02d/%d", sequence, year)
}

// NewProcess validates and builds a process.
func NewProcess(processID id.ProcessID, number, procType, specification, interestedParty string,
	origin id.SectorID, creator id.CollaboratorID, tier AccessTier, now time.Time) (*Process, error) {

	if strings.TrimSpace(procType) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "process type is required")
	}
	if strings.TrimSpace(interestedParty) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "interested party is required")
	}
	if !validTiers[tier] {
		return nil, dErrors.New(dErrors.CodeValidation, "access tier is required")
	}
	if origin.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "origin sector is required")
	}
	if creator.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "creator is required")
	}
	return &Process{
		ID:              processID,
		Number:          number,
		Type:            strings.TrimSpace(procType),
		Specification:   strings.TrimSpace(specification),
		InterestedParty: strings.TrimSpace(interestedParty),
		OriginSector:    origin,
		Creator:         creator,
		AccessTier:      tier,
		Archived:        false,
		CreatedAt:       now,
	}, nil
}

// IsPublic reports whether the process sits in the public tier.
func (p *Process) IsPublic() bool { return p.AccessTier == TierPublic }

// Movement is one entry in the append-only routing ledger. Movements are
// never deleted or mutated in place except for the Active flag, which is
// cleared when a newer routing action supersedes it.
type Movement struct {
	ID           id.MovementID `json:"id"`
	ProcessID    id.ProcessID  `json:"process_id"`
	FromSector   id.SectorID   `json:"from_sector"`
	ToSector     id.SectorID   `json:"to_sector"`
	Observations string        `json:"observations,omitempty"`
	KeepOpen     bool          `json:"keep_open_at_origin"`
	Active       bool          `json:"active"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Observation texts recorded by the routing engine itself.
const (
	ObservationCreation     = "process creation"
	ObservationKeptAtOrigin = "kept open at origin sector"
)

// NewInitialMovement builds the movement inserted at process creation:
// from = to = origin sector, active.
func NewInitialMovement(movementID id.MovementID, processID id.ProcessID, origin id.SectorID, now time.Time) *Movement {
	return &Movement{
		ID:           movementID,
		ProcessID:    processID,
		FromSector:   origin,
		ToSector:     origin,
		Observations: ObservationCreation,
		Active:       true,
		CreatedAt:    now,
	}
}

// IsInitial reports whether the movement is a creation entry (from = to and
// not a keep-open marker).
func (m *Movement) IsInitial() bool {
	return m.FromSector == m.ToSector && !m.KeepOpen && m.Observations == ObservationCreation
}

// AccessGrant maps one collaborator to one process, as an explicit exception
// to tier-based visibility.
type AccessGrant struct {
	ID           id.GrantID        `json:"id"`
	ProcessID    id.ProcessID      `json:"process_id"`
	Collaborator id.CollaboratorID `json:"collaborator"`
	GrantedBy    id.CollaboratorID `json:"granted_by"`
	CreatedAt    time.Time         `json:"created_at"`
}
