package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tramita/internal/auth"
	"tramita/internal/directory/models"
	"tramita/internal/directory/service"
	dirstore "tramita/internal/directory/store"
	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	sectors       *dirstore.InMemorySectorStore
	collaborators *dirstore.InMemoryCollaboratorStore
	credentials   *auth.InMemoryCredentialStore
	service       *service.Service

	protocol id.SectorID
	admin    id.CollaboratorID
	clerk    id.CollaboratorID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctx := context.Background()
	now := time.Now()

	s.sectors = dirstore.NewInMemorySectorStore()
	s.collaborators = dirstore.NewInMemoryCollaboratorStore()
	s.credentials = auth.NewInMemoryCredentialStore()
	s.service = service.New(s.sectors, s.collaborators, s.credentials, nil)

	protocol, err := models.NewSector(id.NewSectorID(), "Protocolo Geral", "", now)
	s.Require().NoError(err)
	s.Require().NoError(s.sectors.Create(ctx, protocol))
	s.protocol = protocol.ID

	admin, err := models.NewCollaborator(id.NewCollaboratorID(), "Root Admin", "admin",
		protocol.ID, models.NewCapabilitySet("admin"), now)
	s.Require().NoError(err)
	s.Require().NoError(s.collaborators.Create(ctx, admin))
	s.admin = admin.ID

	clerk, err := models.NewCollaborator(id.NewCollaboratorID(), "Carla Dias", "servidor",
		protocol.ID, models.NewCapabilitySet(), now)
	s.Require().NoError(err)
	s.Require().NoError(s.collaborators.Create(ctx, clerk))
	s.clerk = clerk.ID
}

func (s *ServiceSuite) asAdmin() context.Context {
	return testutil.ActorContext(s.admin, s.protocol)
}

func (s *ServiceSuite) TestCreateSector() {
	s.Run("admin creates a sector", func() {
		sector, err := s.service.CreateSector(s.asAdmin(), "Financeiro", "")
		s.Require().NoError(err)
		s.Equal("Financeiro", sector.Name)

		listed, err := s.service.ListSectors(s.asAdmin())
		s.Require().NoError(err)
		s.Len(listed, 2)
	})

	s.Run("non-admin is denied", func() {
		_, err := s.service.CreateSector(testutil.ActorContext(s.clerk, s.protocol), "Financeiro", "")
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("anonymous is rejected", func() {
		_, err := s.service.CreateSector(context.Background(), "Financeiro", "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	})
}

func (s *ServiceSuite) TestRenameSector() {
	s.Run("renames an existing sector", func() {
		s.Require().NoError(s.service.RenameSector(s.asAdmin(), s.protocol, "Protocolo Central"))

		listed, err := s.service.ListSectors(s.asAdmin())
		s.Require().NoError(err)
		s.Equal("Protocolo Central", listed[0].Name)
	})

	s.Run("unknown sector", func() {
		err := s.service.RenameSector(s.asAdmin(), id.NewSectorID(), "Ghost")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestCreateCollaborator() {
	s.Run("creates account with capabilities and credentials", func() {
		collaborator, err := s.service.CreateCollaborator(s.asAdmin(), service.CreateCollaboratorInput{
			Name:         "Bruno Lima",
			Role:         "servidor",
			HomeSector:   s.protocol,
			Capabilities: []string{"assinatura"},
			Password:     "long-enough-password",
		})
		s.Require().NoError(err)
		s.True(collaborator.HasCapability(models.CapabilitySign))

		verifier := auth.NewBcryptVerifier(s.credentials)
		s.NoError(verifier.Verify(context.Background(), collaborator.ID, "long-enough-password"))
		err = verifier.Verify(context.Background(), collaborator.ID, "wrong")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	})

	s.Run("unknown capability code", func() {
		_, err := s.service.CreateCollaborator(s.asAdmin(), service.CreateCollaboratorInput{
			Name:       "Bruno Lima",
			HomeSector: s.protocol,
			Capabilities: []string{
				"invent-things",
			},
			Password: "long-enough-password",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("short password", func() {
		_, err := s.service.CreateCollaborator(s.asAdmin(), service.CreateCollaboratorInput{
			Name:       "Bruno Lima",
			HomeSector: s.protocol,
			Password:   "short",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("home sector must exist", func() {
		_, err := s.service.CreateCollaborator(s.asAdmin(), service.CreateCollaboratorInput{
			Name:       "Bruno Lima",
			HomeSector: id.NewSectorID(),
			Password:   "long-enough-password",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("non-admin cannot create accounts", func() {
		_, err := s.service.CreateCollaborator(testutil.ActorContext(s.clerk, s.protocol), service.CreateCollaboratorInput{
			Name:       "Bruno Lima",
			HomeSector: s.protocol,
			Password:   "long-enough-password",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func (s *ServiceSuite) TestGetCollaborator() {
	s.Run("any authenticated actor reads the directory", func() {
		found, err := s.service.GetCollaborator(testutil.ActorContext(s.clerk, s.protocol), s.admin)
		s.Require().NoError(err)
		s.Equal("Root Admin", found.Name)
	})

	s.Run("unknown collaborator", func() {
		_, err := s.service.GetCollaborator(s.asAdmin(), id.NewCollaboratorID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
