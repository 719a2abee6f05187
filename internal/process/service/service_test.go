package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tramita/internal/audit"
	dirmodels "tramita/internal/directory/models"
	dirstore "tramita/internal/directory/store"
	"tramita/internal/process/models"
	"tramita/internal/process/store"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite

	service       *Service
	sectors       *dirstore.InMemorySectorStore
	collaborators *dirstore.InMemoryCollaboratorStore
	trail         *audit.InMemoryStore

	protocol id.SectorID
	finance  id.SectorID
	legal    id.SectorID

	clerk   id.CollaboratorID
	auditor id.CollaboratorID
	outside id.CollaboratorID

	now time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.sectors = dirstore.NewInMemorySectorStore()
	s.collaborators = dirstore.NewInMemoryCollaboratorStore()
	s.trail = audit.NewInMemoryStore()
	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	s.service = New(
		store.NewInMemoryProcessStore(),
		store.NewInMemoryMovementStore(),
		store.NewInMemoryGrantStore(),
		s.sectors, s.collaborators, nil,
		WithAudit(audit.NewPublisher(s.trail)),
	)

	s.protocol = s.addSector("Protocolo Geral")
	s.finance = s.addSector("Financeiro")
	s.legal = s.addSector("Juridico")

	s.clerk = s.addCollaborator("Ana Souza", s.protocol)
	s.auditor = s.addCollaborator("Bruno Lima", s.finance, dirmodels.CapabilityViewArchived)
	s.outside = s.addCollaborator("Carla Nunes", s.legal)
}

func (s *ServiceSuite) addSector(name string) id.SectorID {
	sector, err := dirmodels.NewSector(id.NewSectorID(), name, "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.sectors.Create(context.Background(), sector))
	return sector.ID
}

func (s *ServiceSuite) addCollaborator(name string, home id.SectorID, caps ...dirmodels.Capability) id.CollaboratorID {
	set := dirmodels.CapabilitySet{}
	for _, c := range caps {
		set[c] = struct{}{}
	}
	collab, err := dirmodels.NewCollaborator(id.NewCollaboratorID(), name, "analyst", home, set, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.collaborators.Create(context.Background(), collab))
	return collab.ID
}

func (s *ServiceSuite) ctx(actor id.CollaboratorID, sector id.SectorID) context.Context {
	return testutil.ActorContextAt(actor, sector, s.now)
}

func (s *ServiceSuite) createProcess(actor id.CollaboratorID, sector id.SectorID, tier string) *models.Process {
	process, err := s.service.CreateProcess(s.ctx(actor, sector), CreateProcessInput{
		Type:            "Requisition",
		Specification:   "office supplies",
		InterestedParty: "Facilities",
		AccessTier:      tier,
	})
	s.Require().NoError(err)
	return process
}

func (s *ServiceSuite) TestCreateProcess() {
	s.Run("assigns sequential numbers within the year", func() {
		first := s.createProcess(s.clerk, s.protocol, "public")
		second := s.createProcess(s.clerk, s.protocol, "public")

		s.Equal("01/2026", first.Number)
		s.Equal("02/2026", second.Number)
	})

	s.Run("writes the initial movement at the origin", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		ledger, err := s.service.GetHistory(s.ctx(s.clerk, s.protocol), process.ID)
		s.Require().NoError(err)
		s.Require().Len(ledger, 1)
		s.Equal(s.protocol, ledger[0].FromSector)
		s.Equal(s.protocol, ledger[0].ToSector)
		s.True(ledger[0].Active)
		s.True(ledger[0].IsInitial())
	})

	s.Run("records creation grants on confidential processes", func() {
		process, err := s.service.CreateProcess(s.ctx(s.clerk, s.protocol), CreateProcessInput{
			Type:            "Disciplinary",
			InterestedParty: "HR",
			AccessTier:      "confidential",
			Grantees:        []id.CollaboratorID{s.auditor},
		})
		s.Require().NoError(err)

		_, err = s.service.GetProcess(s.ctx(s.auditor, s.finance), process.ID)
		s.NoError(err)
	})

	s.Run("rejects an unknown access tier", func() {
		_, err := s.service.CreateProcess(s.ctx(s.clerk, s.protocol), CreateProcessInput{
			Type:            "Requisition",
			InterestedParty: "Facilities",
			AccessTier:      "secret",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects an unauthenticated caller", func() {
		_, err := s.service.CreateProcess(context.Background(), CreateProcessInput{
			Type:            "Requisition",
			InterestedParty: "Facilities",
			AccessTier:      "public",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	})
}

func (s *ServiceSuite) TestRouteProcess() {
	s.Run("supersedes the previous location", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		ledger, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID:    process.ID,
			ToSector:     s.finance,
			Observations: "for budget review",
		})
		s.Require().NoError(err)
		s.Require().Len(ledger, 2)

		var active []*models.Movement
		for _, m := range ledger {
			if m.Active {
				active = append(active, m)
			}
		}
		s.Require().Len(active, 1)
		s.Equal(s.finance, active[0].ToSector)
		s.False(active[0].KeepOpen)
	})

	s.Run("keep-open leaves two active movements", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		ledger, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID:        process.ID,
			ToSector:         s.finance,
			KeepOpenAtOrigin: true,
		})
		s.Require().NoError(err)
		s.Require().Len(ledger, 3)

		activeTo := map[id.SectorID]bool{}
		for _, m := range ledger {
			if m.Active {
				activeTo[m.ToSector] = true
			}
		}
		s.True(activeTo[s.protocol])
		s.True(activeTo[s.finance])

		// The flag travels on the routed movement itself, not only on the
		// keep-open marker.
		for _, m := range ledger {
			if m.Active && m.ToSector == s.finance {
				s.True(m.KeepOpen, "routed movement must record that the origin stayed open")
			}
		}
	})

	s.Run("keeps the full history after repeated routing", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{ProcessID: process.ID, ToSector: s.finance})
		s.Require().NoError(err)
		ledger, err := s.service.RouteProcess(s.ctx(s.clerk, s.finance), RouteInput{ProcessID: process.ID, ToSector: s.legal})
		s.Require().NoError(err)

		s.Len(ledger, 3)
		active := 0
		for _, m := range ledger {
			if m.Active {
				active++
			}
		}
		s.Equal(1, active)
	})

	s.Run("denies an uninvolved collaborator", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		_, err := s.service.RouteProcess(s.ctx(s.outside, s.legal), RouteInput{
			ProcessID: process.ID,
			ToSector:  s.finance,
		})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("refuses to route an archived process", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")
		s.Require().NoError(s.service.ArchiveProcess(s.ctx(s.clerk, s.protocol), process.ID))

		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID: process.ID,
			ToSector:  s.finance,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("refuses the current sector as destination", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID: process.ID,
			ToSector:  s.protocol,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown destination sector fails validation", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID: process.ID,
			ToSector:  id.NewSectorID(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestArchiveAndReopen() {
	s.Run("creator archives and reopens", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		s.Require().NoError(s.service.ArchiveProcess(s.ctx(s.clerk, s.protocol), process.ID))
		detail, err := s.service.GetProcess(s.ctx(s.clerk, s.protocol), process.ID)
		s.Require().NoError(err)
		s.True(detail.Process.Archived)

		s.Require().NoError(s.service.ReopenProcess(s.ctx(s.clerk, s.protocol), process.ID))
		detail, err = s.service.GetProcess(s.ctx(s.clerk, s.protocol), process.ID)
		s.Require().NoError(err)
		s.False(detail.Process.Archived)
	})

	s.Run("archiving twice is an invalid state", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")
		s.Require().NoError(s.service.ArchiveProcess(s.ctx(s.clerk, s.protocol), process.ID))

		err := s.service.ArchiveProcess(s.ctx(s.clerk, s.protocol), process.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("bystanders cannot archive", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")

		err := s.service.ArchiveProcess(s.ctx(s.outside, s.legal), process.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func (s *ServiceSuite) TestAccessControl() {
	s.Run("confidential process hidden from non-grantees", func() {
		process := s.createProcess(s.clerk, s.protocol, "confidential")

		_, err := s.service.GetProcess(s.ctx(s.outside, s.legal), process.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("grant opens and revoke closes visibility", func() {
		process := s.createProcess(s.clerk, s.protocol, "restricted")

		_, err := s.service.GrantAccess(s.ctx(s.clerk, s.protocol), process.ID, s.outside)
		s.Require().NoError(err)
		_, err = s.service.GetProcess(s.ctx(s.outside, s.legal), process.ID)
		s.NoError(err)

		s.Require().NoError(s.service.RevokeAccess(s.ctx(s.clerk, s.protocol), process.ID, s.outside))
		_, err = s.service.GetProcess(s.ctx(s.outside, s.legal), process.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("granting requires view access", func() {
		process := s.createProcess(s.clerk, s.protocol, "confidential")

		_, err := s.service.GrantAccess(s.ctx(s.outside, s.legal), process.ID, s.auditor)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("unknown process id is not found", func() {
		_, err := s.service.GetProcess(s.ctx(s.clerk, s.protocol), id.NewProcessID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestSectorViews() {
	// Each scenario gets a fresh world: classification is over the whole
	// process listing, so leftovers from a previous scenario would bleed in.
	s.Run("routing moves the process from origin to destination", func() {
		s.SetupTest()
		process := s.createProcess(s.clerk, s.protocol, "public")
		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID: process.ID, ToSector: s.finance,
		})
		s.Require().NoError(err)

		origin, err := s.service.ListForSector(s.ctx(s.clerk, s.protocol), s.protocol)
		s.Require().NoError(err)
		s.Empty(origin.Generated)
		s.Empty(origin.Received)

		destination, err := s.service.ListForSector(s.ctx(s.auditor, s.finance), s.finance)
		s.Require().NoError(err)
		s.Len(destination.Received, 1)
		s.Empty(destination.Generated)
	})

	s.Run("keep-open shows the process in both sectors", func() {
		s.SetupTest()
		process := s.createProcess(s.clerk, s.protocol, "public")
		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID: process.ID, ToSector: s.finance, KeepOpenAtOrigin: true,
		})
		s.Require().NoError(err)

		origin, err := s.service.ListForSector(s.ctx(s.clerk, s.protocol), s.protocol)
		s.Require().NoError(err)
		s.Len(origin.Generated, 1)

		destination, err := s.service.ListForSector(s.ctx(s.auditor, s.finance), s.finance)
		s.Require().NoError(err)
		s.Len(destination.Received, 1)
	})

	s.Run("confidential processes are omitted from other actors' views", func() {
		s.SetupTest()
		process := s.createProcess(s.clerk, s.protocol, "confidential")
		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID: process.ID, ToSector: s.legal,
		})
		s.Require().NoError(err)

		view, err := s.service.ListForSector(s.ctx(s.outside, s.legal), s.legal)
		s.Require().NoError(err)
		s.Empty(view.Received)

		mine, err := s.service.ListForSector(s.ctx(s.clerk, s.legal), s.legal)
		s.Require().NoError(err)
		s.Len(mine.Received, 1)
	})

	s.Run("archived processes hidden without the capability", func() {
		s.SetupTest()
		process := s.createProcess(s.clerk, s.protocol, "public")
		s.Require().NoError(s.service.ArchiveProcess(s.ctx(s.clerk, s.protocol), process.ID))

		view, err := s.service.ListForSector(s.ctx(s.clerk, s.protocol), s.protocol)
		s.Require().NoError(err)
		s.Empty(view.Generated)

		privileged, err := s.service.ListForSector(s.ctx(s.auditor, s.protocol), s.protocol)
		s.Require().NoError(err)
		s.Len(privileged.Generated, 1)
	})
}

func (s *ServiceSuite) TestSearchProcesses() {
	s.Run("matches on interested party", func() {
		s.createProcess(s.clerk, s.protocol, "public")

		found, err := s.service.SearchProcesses(s.ctx(s.clerk, s.protocol), "facilities", nil)
		s.Require().NoError(err)
		s.Len(found, 1)

		none, err := s.service.SearchProcesses(s.ctx(s.clerk, s.protocol), "payroll", nil)
		s.Require().NoError(err)
		s.Empty(none)
	})

	s.Run("archived filter requires the capability", func() {
		archived := true
		_, err := s.service.SearchProcesses(s.ctx(s.clerk, s.protocol), "", &archived)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

		_, err = s.service.SearchProcesses(s.ctx(s.auditor, s.finance), "", &archived)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestAuditTrail() {
	s.Run("routing and archiving leave a trail", func() {
		process := s.createProcess(s.clerk, s.protocol, "public")
		_, err := s.service.RouteProcess(s.ctx(s.clerk, s.protocol), RouteInput{
			ProcessID: process.ID, ToSector: s.finance,
		})
		s.Require().NoError(err)
		s.Require().NoError(s.service.ArchiveProcess(s.ctx(s.clerk, s.protocol), process.ID))

		events, err := s.trail.ListByProcess(context.Background(), process.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 3)
		s.Equal(audit.ActionProcessCreated, events[0].Action)
		s.Equal(audit.ActionProcessRouted, events[1].Action)
		s.Equal(audit.ActionProcessArchived, events[2].Action)
	})
}
