package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fusion32/forgottenserver/internal/game"
)

// PostgresBanStore implements game.BanStore over the ban tables.
type PostgresBanStore struct {
	pool *pgxpool.Pool
}

// NewPostgresBanStore creates a ban store on the given pool.
func NewPostgresBanStore(pool *pgxpool.Pool) *PostgresBanStore {
	return &PostgresBanStore{pool: pool}
}

// IPBanInfo returns the active ban for an address, or nil.
func (r *PostgresBanStore) IPBanInfo(ctx context.Context, ip string) (*game.BanInfo, error) {
	var info game.BanInfo
	err := r.pool.QueryRow(ctx,
		`SELECT reason, banned_by, COALESCE(extract(epoch FROM expires_at)::bigint, 0)
		 FROM ip_bans
		 WHERE ip = $1 AND (expires_at IS NULL OR expires_at > now())`, ip,
	).Scan(&info.Reason, &info.BannedBy, &info.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying ip ban for %s: %w", ip, err)
	}
	return &info, nil
}

// AccountBanInfo returns the active ban for an account, or nil.
func (r *PostgresBanStore) AccountBanInfo(ctx context.Context, accountID uint32) (*game.BanInfo, error) {
	var info game.BanInfo
	err := r.pool.QueryRow(ctx,
		`SELECT reason, banned_by, COALESCE(extract(epoch FROM expires_at)::bigint, 0)
		 FROM account_bans
		 WHERE account_id = $1 AND (expires_at IS NULL OR expires_at > now())`, accountID,
	).Scan(&info.Reason, &info.BannedBy, &info.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account ban for %d: %w", accountID, err)
	}
	return &info, nil
}

// IsPlayerNamelocked reports whether the character's name is locked.
func (r *PostgresBanStore) IsPlayerNamelocked(ctx context.Context, guid uint32) (bool, error) {
	var locked bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM player_namelocks WHERE player_id = $1)`, guid,
	).Scan(&locked)
	if err != nil {
		return false, fmt.Errorf("querying namelock for %d: %w", guid, err)
	}
	return locked, nil
}
