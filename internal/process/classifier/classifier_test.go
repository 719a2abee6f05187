package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tramita/internal/process/models"
	id "tramita/pkg/domain"
)

type ClassifierSuite struct {
	suite.Suite
	sectorA id.SectorID
	sectorB id.SectorID
	sectorC id.SectorID
	base    time.Time
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierSuite))
}

func (s *ClassifierSuite) SetupTest() {
	s.sectorA = id.NewSectorID()
	s.sectorB = id.NewSectorID()
	s.sectorC = id.NewSectorID()
	s.base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *ClassifierSuite) newProcess(origin id.SectorID) *models.Process {
	proc, err := models.NewProcess(id.NewProcessID(), "01/2026", "MEMO", "spec", "party",
		origin, id.NewCollaboratorID(), models.TierPublic, s.base)
	s.Require().NoError(err)
	return proc
}

func (s *ClassifierSuite) initialMovement(proc *models.Process) *models.Movement {
	return models.NewInitialMovement(id.NewMovementID(), proc.ID, proc.OriginSector, s.base)
}

func (s *ClassifierSuite) TestFreshProcessIsGeneratedAtOrigin() {
	proc := s.newProcess(s.sectorA)
	entry := ProcessWithLedger{Process: proc, Movements: []*models.Movement{s.initialMovement(proc)}}

	view := Classify([]ProcessWithLedger{entry}, s.sectorA)
	s.Len(view.Generated, 1)
	s.Empty(view.Received)

	other := Classify([]ProcessWithLedger{entry}, s.sectorB)
	s.Empty(other.Generated)
	s.Empty(other.Received)
}

func (s *ClassifierSuite) TestRoutedProcessLeavesOriginAndArrivesAtDestination() {
	proc := s.newProcess(s.sectorA)
	initial := s.initialMovement(proc)
	initial.Active = false
	routed := &models.Movement{
		ID:         id.NewMovementID(),
		ProcessID:  proc.ID,
		FromSector: s.sectorA,
		ToSector:   s.sectorB,
		Active:     true,
		CreatedAt:  s.base.Add(time.Hour),
	}
	entry := ProcessWithLedger{Process: proc, Movements: []*models.Movement{initial, routed}}

	atOrigin := Classify([]ProcessWithLedger{entry}, s.sectorA)
	s.Empty(atOrigin.Generated)
	s.Empty(atOrigin.Received)

	atDestination := Classify([]ProcessWithLedger{entry}, s.sectorB)
	s.Empty(atDestination.Generated)
	s.Len(atDestination.Received, 1)
}

func (s *ClassifierSuite) TestKeepOpenRoutingShowsInBothSectorsOnceEach() {
	proc := s.newProcess(s.sectorA)
	initial := s.initialMovement(proc)
	initial.Active = false
	now := s.base.Add(time.Hour)
	keepOpen := &models.Movement{
		ID:           id.NewMovementID(),
		ProcessID:    proc.ID,
		FromSector:   s.sectorA,
		ToSector:     s.sectorA,
		Observations: models.ObservationKeptAtOrigin,
		KeepOpen:     true,
		Active:       true,
		CreatedAt:    now,
	}
	main := &models.Movement{
		ID:         id.NewMovementID(),
		ProcessID:  proc.ID,
		FromSector: s.sectorA,
		ToSector:   s.sectorB,
		KeepOpen:   true,
		Active:     true,
		CreatedAt:  now,
	}
	entry := ProcessWithLedger{Process: proc, Movements: []*models.Movement{initial, keepOpen, main}}

	atOrigin := Classify([]ProcessWithLedger{entry}, s.sectorA)
	s.Len(atOrigin.Generated, 1)
	s.Empty(atOrigin.Received)

	atDestination := Classify([]ProcessWithLedger{entry}, s.sectorB)
	s.Empty(atDestination.Generated)
	s.Len(atDestination.Received, 1)
}

func (s *ClassifierSuite) TestUntouchedSectorSeesNothing() {
	proc := s.newProcess(s.sectorA)
	entry := ProcessWithLedger{Process: proc, Movements: []*models.Movement{s.initialMovement(proc)}}

	view := Classify([]ProcessWithLedger{entry}, s.sectorC)
	s.Empty(view.Generated)
	s.Empty(view.Received)
}

func (s *ClassifierSuite) TestInactiveMovementsNeverAffectClassification() {
	proc := s.newProcess(s.sectorA)
	initial := s.initialMovement(proc)
	initial.Active = false
	toB := &models.Movement{
		ID: id.NewMovementID(), ProcessID: proc.ID,
		FromSector: s.sectorA, ToSector: s.sectorB,
		Active: false, CreatedAt: s.base.Add(time.Hour),
	}
	toC := &models.Movement{
		ID: id.NewMovementID(), ProcessID: proc.ID,
		FromSector: s.sectorB, ToSector: s.sectorC,
		Active: true, CreatedAt: s.base.Add(2 * time.Hour),
	}
	entry := ProcessWithLedger{Process: proc, Movements: []*models.Movement{initial, toB, toC}}

	atB := Classify([]ProcessWithLedger{entry}, s.sectorB)
	s.Empty(atB.Generated)
	s.Empty(atB.Received)

	atC := Classify([]ProcessWithLedger{entry}, s.sectorC)
	s.Len(atC.Received, 1)
}

func (s *ClassifierSuite) TestEmptyLedgerFallsBackToOrigin() {
	proc := s.newProcess(s.sectorA)
	entry := ProcessWithLedger{Process: proc}

	atOrigin := Classify([]ProcessWithLedger{entry}, s.sectorA)
	s.Len(atOrigin.Generated, 1)

	elsewhere := Classify([]ProcessWithLedger{entry}, s.sectorB)
	s.Empty(elsewhere.Generated)
	s.Empty(elsewhere.Received)
}

func (s *ClassifierSuite) TestNeverInBothBuckets() {
	proc := s.newProcess(s.sectorA)
	// Route away and back with keep-open: sector A both kept it open earlier
	// and is the destination of the latest movement.
	back := &models.Movement{
		ID: id.NewMovementID(), ProcessID: proc.ID,
		FromSector: s.sectorB, ToSector: s.sectorA,
		Active: true, CreatedAt: s.base.Add(3 * time.Hour),
	}
	entry := ProcessWithLedger{Process: proc, Movements: []*models.Movement{back}}

	view := Classify([]ProcessWithLedger{entry}, s.sectorA)
	s.Equal(1, len(view.Generated)+len(view.Received))
}
