// Package classifier derives per-sector "generated" and "received" views
// from a process's movement ledger. There is no stored current-sector field;
// this derivation is the single source of truth for where a process sits.
package classifier

import (
	"sort"

	"tramita/internal/process/models"
	id "tramita/pkg/domain"
)

// ProcessWithLedger pairs a process with its movement ledger, as loaded by
// the store. Classification never touches the store itself.
type ProcessWithLedger struct {
	Process   *models.Process
	Movements []*models.Movement
}

// View buckets processes for one viewing sector.
type View struct {
	Generated []*models.Process
	Received  []*models.Process
}

// Classify buckets each process into generated/received for viewerSector.
//
// Only the most recent active movements are consulted; superseded (inactive)
// movements never affect classification. A process appears in at most one
// bucket, and in neither when no active movement touches the viewer sector.
func Classify(processes []ProcessWithLedger, viewerSector id.SectorID) View {
	var view View
	for _, entry := range processes {
		switch classifyOne(entry, viewerSector) {
		case bucketGenerated:
			view.Generated = append(view.Generated, entry.Process)
		case bucketReceived:
			view.Received = append(view.Received, entry.Process)
		}
	}
	return view
}

type bucket int

const (
	bucketNone bucket = iota
	bucketGenerated
	bucketReceived
)

func classifyOne(entry ProcessWithLedger, viewerSector id.SectorID) bucket {
	active := activeByRecency(entry.Movements)

	// A ledger is never empty after creation; if it somehow is, fall back
	// to the stored origin.
	if len(active) == 0 {
		if entry.Process != nil && entry.Process.OriginSector == viewerSector {
			return bucketGenerated
		}
		return bucketNone
	}

	// Walk the active movements newest first and stop at the first one that
	// names the viewer sector as destination. A from = to movement there is
	// either the initial creation entry or a keep-open marker, both of which
	// mean the sector generated (and still holds) the case; anything else
	// means it was received. A keep-open routing leaves two active movements
	// with the same timestamp, so both are inspected rather than just the head.
	for _, m := range active {
		if m.ToSector != viewerSector {
			continue
		}
		if m.FromSector == viewerSector && (m.KeepOpen || m.IsInitial()) {
			return bucketGenerated
		}
		return bucketReceived
	}
	return bucketNone
}

// activeByRecency filters to active movements, most recent first.
func activeByRecency(movements []*models.Movement) []*models.Movement {
	active := make([]*models.Movement, 0, len(movements))
	for _, m := range movements {
		if m.Active {
			active = append(active, m)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active
}
