package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// Capability is a closed enumeration of permission codes a collaborator may
// hold. Keeping a single enum (rather than free-form strings at call sites)
// means policy checks cannot silently typo-mismatch.
type Capability string

const (
	CapabilityAdmin         Capability = "admin"
	CapabilitySign          Capability = "assinatura"
	CapabilityViewArchived  Capability = "ver_arquivados"
	CapabilityChangeSector  Capability = "mudar_setor"
	CapabilitySectorManager Capability = "gestor_setor"
	CapabilityStaff         Capability = "servidor"
	CapabilityViewer        Capability = "visualizador"
	CapabilityDocControl    Capability = "controle_doc"
	CapabilityFrontDesk     Capability = "protocolo_geral"
	CapabilityConfidential  Capability = "sigiloso"
	CapabilitySupport       Capability = "suporte"
	CapabilityRestricted    Capability = "restrito"
)

var validCapabilities = map[Capability]bool{
	CapabilityAdmin:         true,
	CapabilitySign:          true,
	CapabilityViewArchived:  true,
	CapabilityChangeSector:  true,
	CapabilitySectorManager: true,
	CapabilityStaff:         true,
	CapabilityViewer:        true,
	CapabilityDocControl:    true,
	CapabilityFrontDesk:     true,
	CapabilityConfidential:  true,
	CapabilitySupport:       true,
	CapabilityRestricted:    true,
}

// ParseCapability constructs a Capability from external input. Codes are
// matched case-insensitively ("ADMIN" and "admin" are the same grant).
func ParseCapability(s string) (Capability, bool) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	if !validCapabilities[c] {
		return "", false
	}
	return c, true
}

// CapabilitySet is the set of permission codes held by a collaborator.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from parsed codes, dropping unknown ones.
func NewCapabilitySet(codes ...string) CapabilitySet {
	set := make(CapabilitySet, len(codes))
	for _, code := range codes {
		if c, ok := ParseCapability(code); ok {
			set[c] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set satisfies the capability. Admin is a superset
// capability: it satisfies every check.
func (s CapabilitySet) Has(c Capability) bool {
	if _, ok := s[CapabilityAdmin]; ok {
		return true
	}
	_, ok := s[c]
	return ok
}

// Codes returns the raw permission codes, for persistence.
func (s CapabilitySet) Codes() []string {
	codes := make([]string, 0, len(s))
	for c := range s {
		codes = append(codes, string(c))
	}
	sort.Strings(codes)
	return codes
}

// MarshalJSON renders the set as a sorted array of codes.
func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Codes())
}

// UnmarshalJSON accepts an array of codes, dropping unknown ones.
func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	*s = NewCapabilitySet(codes...)
	return nil
}
