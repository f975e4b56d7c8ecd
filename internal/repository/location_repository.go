package repository

import (
	"context"
	"time"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/pkg/util"
)

// LocationRepository manages the normalized geographic lookup chain:
// state, city, postal code, address type, address. All natural-key lookups
// follow the race-safe lookup-or-create contract.
type LocationRepository interface {
	LookupOrCreateState(ctx context.Context, state, uf string) (*domain.StateLocation, error)
	LookupOrCreateCity(ctx context.Context, city, ufID string) (*domain.City, error)
	LookupOrCreatePostcode(ctx context.Context, code string) (*domain.AddressPostcode, error)
	LookupOrCreateAddressType(ctx context.Context, typeName string) (*domain.AddressType, error)
	CreateAddress(ctx context.Context, address *domain.Address) error
	GetAddressByID(ctx context.Context, id string) (*domain.Address, error)
}

type locationRepository struct {
	db persistence.Querier
}

// NewLocationRepository returns a Postgres-backed implementation.
func NewLocationRepository(db persistence.Querier) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) LookupOrCreateState(ctx context.Context, state, uf string) (*domain.StateLocation, error) {
	q := persistence.QuerierFrom(ctx, r.db)

	const sel = `SELECT id, state, uf, created_at, updated_at FROM state_locations WHERE uf=$1`
	scan := func(row interface{ Scan(...any) error }, dst *domain.StateLocation) error {
		return row.Scan(&dst.ID, &dst.State, &dst.UF, &dst.CreatedAt, &dst.UpdatedAt)
	}

	var loc domain.StateLocation
	err := scan(q.QueryRow(ctx, sel, uf), &loc)
	if err == nil {
		return &loc, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("state lookup", err)
	}

	const ins = `
        INSERT INTO state_locations (state, uf) VALUES ($1,$2)
        ON CONFLICT (uf) DO NOTHING
        RETURNING id, state, uf, created_at, updated_at`
	err = scan(q.QueryRow(ctx, ins, state, uf), &loc)
	if err == nil {
		return &loc, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("state insert", err)
	}
	if err := scan(q.QueryRow(ctx, sel, uf), &loc); err != nil {
		return nil, util.NewPersistenceError("state re-read", err)
	}
	return &loc, nil
}

func (r *locationRepository) LookupOrCreateCity(ctx context.Context, city, ufID string) (*domain.City, error) {
	q := persistence.QuerierFrom(ctx, r.db)

	const sel = `SELECT id, city, uf_id, created_at, updated_at FROM cities WHERE city=$1 AND uf_id=$2`
	var c domain.City
	err := q.QueryRow(ctx, sel, city, ufID).Scan(&c.ID, &c.City, &c.UFID, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return &c, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("city lookup", err)
	}

	const ins = `
        INSERT INTO cities (city, uf_id) VALUES ($1,$2)
        ON CONFLICT (city, uf_id) DO NOTHING
        RETURNING id, city, uf_id, created_at, updated_at`
	err = q.QueryRow(ctx, ins, city, ufID).Scan(&c.ID, &c.City, &c.UFID, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return &c, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("city insert", err)
	}
	if err := q.QueryRow(ctx, sel, city, ufID).Scan(&c.ID, &c.City, &c.UFID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, util.NewPersistenceError("city re-read", err)
	}
	return &c, nil
}

// LookupOrCreatePostcode normalizes the raw code through the entity setter
// before touching the store, so malformed codes fail as validation errors.
func (r *locationRepository) LookupOrCreatePostcode(ctx context.Context, code string) (*domain.AddressPostcode, error) {
	var probe domain.AddressPostcode
	if err := probe.SetCode(code); err != nil {
		return nil, err
	}
	normalized := probe.Code()
	q := persistence.QuerierFrom(ctx, r.db)

	const sel = `SELECT id, code, created_at, updated_at FROM address_postcodes WHERE code=$1`
	var id, stored string
	var createdAt, updatedAt time.Time
	err := q.QueryRow(ctx, sel, normalized).Scan(&id, &stored, &createdAt, &updatedAt)
	if err == nil {
		return domain.PostcodeFromRecord(id, stored, createdAt, updatedAt), nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("postcode lookup", err)
	}

	const ins = `
        INSERT INTO address_postcodes (code) VALUES ($1)
        ON CONFLICT (code) DO NOTHING
        RETURNING id, code, created_at, updated_at`
	err = q.QueryRow(ctx, ins, normalized).Scan(&id, &stored, &createdAt, &updatedAt)
	if err == nil {
		return domain.PostcodeFromRecord(id, stored, createdAt, updatedAt), nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("postcode insert", err)
	}
	if err := q.QueryRow(ctx, sel, normalized).Scan(&id, &stored, &createdAt, &updatedAt); err != nil {
		return nil, util.NewPersistenceError("postcode re-read", err)
	}
	return domain.PostcodeFromRecord(id, stored, createdAt, updatedAt), nil
}

func (r *locationRepository) LookupOrCreateAddressType(ctx context.Context, typeName string) (*domain.AddressType, error) {
	q := persistence.QuerierFrom(ctx, r.db)

	const sel = `SELECT id, type, created_at, updated_at FROM address_types WHERE type=$1`
	var at domain.AddressType
	err := q.QueryRow(ctx, sel, typeName).Scan(&at.ID, &at.Type, &at.CreatedAt, &at.UpdatedAt)
	if err == nil {
		return &at, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("address type lookup", err)
	}

	const ins = `
        INSERT INTO address_types (type) VALUES ($1)
        ON CONFLICT (type) DO NOTHING
        RETURNING id, type, created_at, updated_at`
	err = q.QueryRow(ctx, ins, typeName).Scan(&at.ID, &at.Type, &at.CreatedAt, &at.UpdatedAt)
	if err == nil {
		return &at, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("address type insert", err)
	}
	if err := q.QueryRow(ctx, sel, typeName).Scan(&at.ID, &at.Type, &at.CreatedAt, &at.UpdatedAt); err != nil {
		return nil, util.NewPersistenceError("address type re-read", err)
	}
	return &at, nil
}

func (r *locationRepository) CreateAddress(ctx context.Context, address *domain.Address) error {
	const query = `
        INSERT INTO addresses (name, postcode_id, address_type_id, number, city_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query,
		address.Name,
		address.PostcodeID,
		address.AddressTypeID,
		address.Number,
		address.CityID,
	).Scan(&address.ID, &address.CreatedAt, &address.UpdatedAt)
}

func (r *locationRepository) GetAddressByID(ctx context.Context, id string) (*domain.Address, error) {
	const query = `
        SELECT id, name, postcode_id, address_type_id, number, city_id, created_at, updated_at
        FROM addresses WHERE id=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	var addr domain.Address
	if err := q.QueryRow(ctx, query, id).Scan(
		&addr.ID, &addr.Name, &addr.PostcodeID, &addr.AddressTypeID, &addr.Number, &addr.CityID,
		&addr.CreatedAt, &addr.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &addr, nil
}
