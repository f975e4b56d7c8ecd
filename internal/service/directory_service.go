package service

import (
	"context"
	"strings"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/internal/repository"
	"github.com/atendo-hq/atendo/pkg/util"
)

// DirectoryService manages costumers, teams and the address reference
// chain. Lookup tables are grown on demand: referencing an unknown state,
// city, postcode or type creates it.
type DirectoryService struct {
	costumers repository.CostumerRepository
	locations repository.LocationRepository
	teams     repository.TeamRepository
	users     repository.UserRepository
	types     repository.TicketTypeRepository
	services  repository.ServiceRepository
	db        persistence.Querier
}

// DirectoryDependencies bundles repositories for the directory service.
type DirectoryDependencies struct {
	CostumerRepo repository.CostumerRepository
	LocationRepo repository.LocationRepository
	TeamRepo     repository.TeamRepository
	UserRepo     repository.UserRepository
	TypeRepo     repository.TicketTypeRepository
	ServiceRepo  repository.ServiceRepository
	DB           persistence.Querier
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		costumers: deps.CostumerRepo,
		locations: deps.LocationRepo,
		teams:     deps.TeamRepo,
		users:     deps.UserRepo,
		types:     deps.TypeRepo,
		services:  deps.ServiceRepo,
		db:        deps.DB,
	}
}

// AddressInput carries a full address by value; every referenced lookup row
// is resolved or created.
type AddressInput struct {
	Name        string
	Number      int
	Postcode    string
	AddressType string
	City        string
	State       string
	UF          string
}

// EnsureAddress resolves the state, city, postcode and type rows and
// creates the address atomically.
func (s *DirectoryService) EnsureAddress(ctx context.Context, input AddressInput) (*domain.Address, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, util.NewValidationError("address name required", nil)
	}
	if strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.UF) == "" {
		return nil, util.NewValidationError("city and uf required", nil)
	}

	var address *domain.Address
	err := persistence.WithTx(ctx, s.db, func(ctx context.Context) error {
		state, err := s.locations.LookupOrCreateState(ctx, strings.TrimSpace(input.State), strings.ToUpper(strings.TrimSpace(input.UF)))
		if err != nil {
			return err
		}
		city, err := s.locations.LookupOrCreateCity(ctx, strings.TrimSpace(input.City), state.ID)
		if err != nil {
			return err
		}
		postcode, err := s.locations.LookupOrCreatePostcode(ctx, input.Postcode)
		if err != nil {
			return err
		}
		addrType, err := s.locations.LookupOrCreateAddressType(ctx, strings.TrimSpace(input.AddressType))
		if err != nil {
			return err
		}

		address = &domain.Address{
			Name:          strings.TrimSpace(input.Name),
			PostcodeID:    postcode.ID,
			AddressTypeID: addrType.ID,
			Number:        input.Number,
			CityID:        city.ID,
		}
		return s.locations.CreateAddress(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// CostumerInput carries costumer creation data with an optional inline
// address.
type CostumerInput struct {
	Name    string
	Address *AddressInput
}

// CreateCostumer registers a costumer, building its address chain when one
// is supplied.
func (s *DirectoryService) CreateCostumer(ctx context.Context, input CostumerInput) (*domain.Costumer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, util.NewValidationError("costumer name required", nil)
	}

	var costumer *domain.Costumer
	err := persistence.WithTx(ctx, s.db, func(ctx context.Context) error {
		var addressID *string
		if input.Address != nil {
			address, err := s.EnsureAddress(ctx, *input.Address)
			if err != nil {
				return err
			}
			addressID = &address.ID
		}
		costumer = &domain.Costumer{
			Name:      strings.TrimSpace(input.Name),
			AddressID: addressID,
		}
		return s.costumers.Create(ctx, costumer)
	})
	if err != nil {
		return nil, err
	}
	return costumer, nil
}

// GetCostumer fetches a costumer by id.
func (s *DirectoryService) GetCostumer(ctx context.Context, id string) (*domain.Costumer, error) {
	costumer, err := s.costumers.GetByID(ctx, id)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("costumer", nil)
		}
		return nil, err
	}
	return costumer, nil
}

// CreateTeam registers a named team.
func (s *DirectoryService) CreateTeam(ctx context.Context, name string) (*domain.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, util.NewValidationError("team name required", nil)
	}
	team := &domain.Team{Name: strings.TrimSpace(name)}
	if err := s.teams.Create(ctx, team); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, util.NewConflict("team name already in use", nil)
		}
		return nil, err
	}
	return team, nil
}

// AddTeamMember joins a user to a team. Joining twice is a no-op.
func (s *DirectoryService) AddTeamMember(ctx context.Context, teamID, userID string) error {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if repository.IsNoRows(err) {
			return util.NewNotFound("team", nil)
		}
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if repository.IsNoRows(err) {
			return util.NewNotFound("user", nil)
		}
		return err
	}
	return s.teams.AddMember(ctx, teamID, userID)
}

// RemoveTeamMember drops a user's membership.
func (s *DirectoryService) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	return s.teams.RemoveMember(ctx, teamID, userID)
}

// EnsureTicketType resolves or creates a ticket type by name.
func (s *DirectoryService) EnsureTicketType(ctx context.Context, name string) (*domain.TicketType, error) {
	if strings.TrimSpace(name) == "" {
		return nil, util.NewValidationError("ticket type name required", nil)
	}
	return s.types.LookupOrCreate(ctx, strings.TrimSpace(name))
}

// ListTicketTypes returns the catalog of ticket types.
func (s *DirectoryService) ListTicketTypes(ctx context.Context) ([]domain.TicketType, error) {
	return s.types.List(ctx)
}

// EnsureService resolves or creates a service catalog entry by name.
func (s *DirectoryService) EnsureService(ctx context.Context, name string) (*domain.Service, error) {
	if strings.TrimSpace(name) == "" {
		return nil, util.NewValidationError("service name required", nil)
	}
	return s.services.LookupOrCreate(ctx, strings.TrimSpace(name))
}
