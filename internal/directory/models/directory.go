// Package models holds the organizational directory: sectors and the
// collaborators that act on processes.
package models

import (
	"strings"
	"time"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
)

// Sector is an organizational unit that can hold or receive a process.
// Once referenced by a process or movement it is immutable except for rename.
type Sector struct {
	ID         id.SectorID `json:"id"`
	Name       string      `json:"name"`
	ParentUnit string      `json:"parent_unit,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewSector validates and builds a sector.
func NewSector(sectorID id.SectorID, name, parentUnit string, now time.Time) (*Sector, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "sector name cannot be empty")
	}
	return &Sector{
		ID:         sectorID,
		Name:       name,
		ParentUnit: strings.TrimSpace(parentUnit),
		CreatedAt:  now,
	}, nil
}

// Rename is the only mutation a referenced sector supports.
func (s *Sector) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "sector name cannot be empty")
	}
	s.Name = name
	return nil
}

// Collaborator is an actor: a person with a home sector and a capability set.
type Collaborator struct {
	ID           id.CollaboratorID `json:"id"`
	Name         string            `json:"name"`
	Role         string            `json:"role,omitempty"`
	HomeSector   id.SectorID       `json:"home_sector"`
	Capabilities CapabilitySet     `json:"capabilities"`
	Active       bool              `json:"active"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewCollaborator validates and builds a collaborator.
func NewCollaborator(collabID id.CollaboratorID, name, role string, homeSector id.SectorID, caps CapabilitySet, now time.Time) (*Collaborator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "collaborator name cannot be empty")
	}
	if homeSector.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "collaborator requires a home sector")
	}
	if caps == nil {
		caps = CapabilitySet{}
	}
	return &Collaborator{
		ID:           collabID,
		Name:         name,
		Role:         strings.TrimSpace(role),
		HomeSector:   homeSector,
		Capabilities: caps,
		Active:       true,
		CreatedAt:    now,
	}, nil
}

// HasCapability reports whether the collaborator holds the capability
// (admin satisfies everything).
func (c *Collaborator) HasCapability(cap Capability) bool {
	return c.Capabilities.Has(cap)
}
