package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dirmodels "tramita/internal/directory/models"
	docmodels "tramita/internal/document/models"
	procmodels "tramita/internal/process/models"

	id "tramita/pkg/domain"
)

type PolicySuite struct {
	suite.Suite

	creator *dirmodels.Collaborator
	admin   *dirmodels.Collaborator
	signer  *dirmodels.Collaborator
	nobody  *dirmodels.Collaborator

	now time.Time
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) SetupTest() {
	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sector := id.NewSectorID()

	s.creator = s.collaborator("creator", sector)
	s.admin = s.collaborator("admin", sector, dirmodels.CapabilityAdmin)
	s.signer = s.collaborator("signer", sector, dirmodels.CapabilitySign)
	s.nobody = s.collaborator("nobody", sector)
}

func (s *PolicySuite) collaborator(name string, sector id.SectorID, caps ...dirmodels.Capability) *dirmodels.Collaborator {
	set := dirmodels.CapabilitySet{}
	for _, c := range caps {
		set[c] = struct{}{}
	}
	collab, err := dirmodels.NewCollaborator(id.NewCollaboratorID(), name, "", sector, set, s.now)
	s.Require().NoError(err)
	return collab
}

func (s *PolicySuite) process(tier procmodels.AccessTier) *procmodels.Process {
	process, err := procmodels.NewProcess(id.NewProcessID(), "01/2026", "Memo", "",
		"Facilities", id.NewSectorID(), s.creator.ID, tier, s.now)
	s.Require().NoError(err)
	return process
}

func (s *PolicySuite) TestCanView() {
	s.Run("public is visible to anyone authenticated", func() {
		s.True(CanView(s.nobody, s.process(procmodels.TierPublic), false).Allowed)
	})

	s.Run("confidential hides from everyone but creator and grantees", func() {
		process := s.process(procmodels.TierConfidential)

		s.True(CanView(s.creator, process, false).Allowed)
		s.True(CanView(s.nobody, process, true).Allowed)
		s.False(CanView(s.nobody, process, false).Allowed)
	})

	s.Run("admin capability does not bypass the tier", func() {
		s.False(CanView(s.admin, s.process(procmodels.TierConfidential), false).Allowed)
	})

	s.Run("restricted behaves like confidential", func() {
		process := s.process(procmodels.TierRestricted)
		s.False(CanView(s.nobody, process, false).Allowed)
		s.True(CanView(s.creator, process, false).Allowed)
	})

	s.Run("nil actor is always denied", func() {
		s.False(CanView(nil, s.process(procmodels.TierPublic), false).Allowed)
	})
}

func (s *PolicySuite) TestCanRoute() {
	s.Run("creator, admin and grantee may route", func() {
		process := s.process(procmodels.TierPublic)

		s.True(CanRoute(s.creator, process, false).Allowed)
		s.True(CanRoute(s.admin, process, false).Allowed)
		s.True(CanRoute(s.nobody, process, true).Allowed)
		s.False(CanRoute(s.nobody, process, false).Allowed)
	})

	s.Run("archived processes never route", func() {
		process := s.process(procmodels.TierPublic)
		process.Archived = true
		s.False(CanRoute(s.creator, process, false).Allowed)
	})
}

func (s *PolicySuite) TestCanArchive() {
	process := s.process(procmodels.TierPublic)

	s.True(CanArchive(s.creator, process).Allowed)
	s.True(CanArchive(s.admin, process).Allowed)
	s.False(CanArchive(s.signer, process).Allowed)
}

func (s *PolicySuite) TestDocumentRules() {
	internal := func() *docmodels.Document {
		document, err := docmodels.NewDocument(id.NewDocumentID(), id.NewProcessID(),
			"Opinion", docmodels.KindInternal, []byte("body"), "<p>body</p>", "hash", s.now)
		s.Require().NoError(err)
		return document
	}
	initialLedger := func(process *procmodels.Process) []*procmodels.Movement {
		return []*procmodels.Movement{
			procmodels.NewInitialMovement(id.NewMovementID(), process.ID, process.OriginSector, s.now),
		}
	}

	s.Run("signing needs the capability and an internal document", func() {
		process := s.process(procmodels.TierPublic)
		document := internal()

		s.False(CanSign(s.creator, process, document, false).Allowed)
		s.True(CanSign(s.signer, process, document, false).Allowed)

		external, err := docmodels.NewDocument(id.NewDocumentID(), process.ID,
			"Scan", docmodels.KindExternal, []byte("bytes"), "", "hash", s.now)
		s.Require().NoError(err)
		s.False(CanSign(s.signer, process, external, false).Allowed)
	})

	s.Run("signed document stays editable only before the first routing", func() {
		process := s.process(procmodels.TierPublic)
		document := internal()
		document.SignerName = "Ana Souza"

		ledger := initialLedger(process)
		s.True(CanModifyDocument(s.creator, process, document, false, ledger).Allowed)

		routed := append(ledger, &procmodels.Movement{
			ID: id.NewMovementID(), ProcessID: process.ID,
			FromSector: process.OriginSector, ToSector: id.NewSectorID(),
			Active: true, CreatedAt: s.now.Add(time.Hour),
		})
		s.False(CanModifyDocument(s.creator, process, document, false, routed).Allowed)
	})

	s.Run("grantees edit but never delete", func() {
		process := s.process(procmodels.TierPublic)
		document := internal()
		ledger := initialLedger(process)

		s.True(CanModifyDocument(s.nobody, process, document, true, ledger).Allowed)
		s.False(CanDeleteDocument(s.nobody, process, true).Allowed)
		s.True(CanDeleteDocument(s.creator, process, false).Allowed)
	})
}

func (s *PolicySuite) TestCanListArchived() {
	archivist := s.collaborator("archivist", id.NewSectorID(), dirmodels.CapabilityViewArchived)

	s.True(CanListArchived(archivist).Allowed)
	s.True(CanListArchived(s.admin).Allowed)
	s.False(CanListArchived(s.nobody).Allowed)
}
