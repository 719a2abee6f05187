// Package domain defines the typed identifiers shared across features.
//
// Each entity gets its own UUID-backed type so a ProcessID can never be
// passed where a SectorID is expected. Construct IDs from external input via
// the Parse helpers, which enforce the invariant that IDs are valid,
// non-nil UUIDs; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "tramita/pkg/domain-errors"
)

type (
	// ProcessID identifies a case file.
	ProcessID uuid.UUID
	// SectorID identifies an organizational unit.
	SectorID uuid.UUID
	// CollaboratorID identifies an actor.
	CollaboratorID uuid.UUID
	// DocumentID identifies a document attached to a process.
	DocumentID uuid.UUID
	// MovementID identifies one entry in a process's routing ledger.
	MovementID uuid.UUID
	// GrantID identifies an explicit access-control entry.
	GrantID uuid.UUID
)

func parse(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseProcessID constructs a ProcessID from external input.
func ParseProcessID(s string) (ProcessID, error) {
	u, err := parse(s)
	return ProcessID(u), err
}

// ParseSectorID constructs a SectorID from external input.
func ParseSectorID(s string) (SectorID, error) {
	u, err := parse(s)
	return SectorID(u), err
}

// ParseCollaboratorID constructs a CollaboratorID from external input.
func ParseCollaboratorID(s string) (CollaboratorID, error) {
	u, err := parse(s)
	return CollaboratorID(u), err
}

// ParseDocumentID constructs a DocumentID from external input.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parse(s)
	return DocumentID(u), err
}

func (id ProcessID) String() string      { return uuid.UUID(id).String() }
func (id SectorID) String() string       { return uuid.UUID(id).String() }
func (id CollaboratorID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id MovementID) String() string     { return uuid.UUID(id).String() }
func (id GrantID) String() string        { return uuid.UUID(id).String() }

func (id ProcessID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id SectorID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CollaboratorID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// Text marshaling renders IDs as canonical UUID strings in JSON payloads.

func (id ProcessID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id SectorID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id CollaboratorID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id MovementID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id GrantID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }

func (id *ProcessID) UnmarshalText(b []byte) error {
	u, err := parse(string(b))
	*id = ProcessID(u)
	return err
}

func (id *SectorID) UnmarshalText(b []byte) error {
	u, err := parse(string(b))
	*id = SectorID(u)
	return err
}

func (id *CollaboratorID) UnmarshalText(b []byte) error {
	u, err := parse(string(b))
	*id = CollaboratorID(u)
	return err
}

func (id *DocumentID) UnmarshalText(b []byte) error {
	u, err := parse(string(b))
	*id = DocumentID(u)
	return err
}

func (id *MovementID) UnmarshalText(b []byte) error {
	u, err := parse(string(b))
	*id = MovementID(u)
	return err
}

func (id *GrantID) UnmarshalText(b []byte) error {
	u, err := parse(string(b))
	*id = GrantID(u)
	return err
}

// NewProcessID allocates a fresh process identifier.
func NewProcessID() ProcessID { return ProcessID(uuid.New()) }

// NewSectorID allocates a fresh sector identifier.
func NewSectorID() SectorID { return SectorID(uuid.New()) }

// NewCollaboratorID allocates a fresh collaborator identifier.
func NewCollaboratorID() CollaboratorID { return CollaboratorID(uuid.New()) }

// NewDocumentID allocates a fresh document identifier.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewMovementID allocates a fresh movement identifier.
func NewMovementID() MovementID { return MovementID(uuid.New()) }

// NewGrantID allocates a fresh grant identifier.
func NewGrantID() GrantID { return GrantID(uuid.New()) }
