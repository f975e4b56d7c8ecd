package repository

import (
	"context"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/pkg/util"
)

// NetworkRepository resolves caller addresses to network rows.
type NetworkRepository interface {
	LookupOrCreate(ctx context.Context, ip string) (*domain.Network, error)
	GetByIP(ctx context.Context, ip string) (*domain.Network, error)
	GetByID(ctx context.Context, id string) (*domain.Network, error)
}

type networkRepository struct {
	db persistence.Querier
}

// NewNetworkRepository returns a Postgres-backed implementation.
func NewNetworkRepository(db persistence.Querier) NetworkRepository {
	return &networkRepository{db: db}
}

func (r *networkRepository) GetByIP(ctx context.Context, ip string) (*domain.Network, error) {
	const query = `SELECT id, ip, created_at FROM networks WHERE ip=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	var network domain.Network
	if err := q.QueryRow(ctx, query, ip).Scan(&network.ID, &network.IP, &network.CreatedAt); err != nil {
		return nil, err
	}
	return &network, nil
}

func (r *networkRepository) GetByID(ctx context.Context, id string) (*domain.Network, error) {
	const query = `SELECT id, ip, created_at FROM networks WHERE id=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	var network domain.Network
	if err := q.QueryRow(ctx, query, id).Scan(&network.ID, &network.IP, &network.CreatedAt); err != nil {
		return nil, err
	}
	return &network, nil
}

// LookupOrCreate returns the row for ip, inserting it on first sight. The
// insert may race with a concurrent request from the same address; the
// unique constraint on ip is the arbiter and the losing writer re-reads.
func (r *networkRepository) LookupOrCreate(ctx context.Context, ip string) (*domain.Network, error) {
	network, err := r.GetByIP(ctx, ip)
	if err == nil {
		return network, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("network lookup", err)
	}

	const insert = `
        INSERT INTO networks (ip) VALUES ($1)
        ON CONFLICT (ip) DO NOTHING
        RETURNING id, ip, created_at`
	q := persistence.QuerierFrom(ctx, r.db)

	var created domain.Network
	err = q.QueryRow(ctx, insert, ip).Scan(&created.ID, &created.IP, &created.CreatedAt)
	if err == nil {
		return &created, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("network insert", err)
	}

	// Lost the race: the winner's row exists now.
	network, err = r.GetByIP(ctx, ip)
	if err != nil {
		return nil, util.NewPersistenceError("network re-read", err)
	}
	return network, nil
}
