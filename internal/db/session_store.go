package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/model"
)

// PostgresSessionStore implements game.SessionStore over the sessions and
// players tables the login portal writes.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionStore creates a session store on the given pool.
func NewPostgresSessionStore(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

// LoadSession resolves a login token and character name to the session the
// portal stored. Returns nil, nil when the pair is unknown or expired.
func (r *PostgresSessionStore) LoadSession(ctx context.Context, token, characterName string) (*game.Session, error) {
	var s game.Session
	err := r.pool.QueryRow(ctx,
		`SELECT s.account_id, p.id, s.bound_ip
		 FROM sessions s
		 JOIN players p ON p.account_id = s.account_id
		 WHERE s.token = $1 AND lower(p.name) = lower($2) AND s.expires_at > now()`,
		token, characterName,
	).Scan(&s.AccountID, &s.CharacterID, &s.BoundIP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying session for %q: %w", characterName, err)
	}
	return &s, nil
}

// PreloadPlayer fills the account-level fields of a player whose GUID is set.
func (r *PostgresSessionStore) PreloadPlayer(ctx context.Context, p *model.Player) (bool, error) {
	var accountType int16
	var premiumEnd, flags int64
	err := r.pool.QueryRow(ctx,
		`SELECT p.name, p.account_id, a.type, a.premium_ends_at, a.flags
		 FROM players p
		 JOIN accounts a ON a.id = p.account_id
		 WHERE p.id = $1`, p.GUID,
	).Scan(&p.CreatureName, &p.AccountID, &accountType, &premiumEnd, &flags)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("preloading player %d: %w", p.GUID, err)
	}

	p.AccountType = model.AccountType(accountType)
	p.PremiumEnd = premiumEnd
	p.Premium = premiumEnd > time.Now().Unix()
	p.Flags = model.PlayerFlags(flags)
	return true, nil
}

// LoadPlayerByID fully loads the character record.
func (r *PostgresSessionStore) LoadPlayerByID(ctx context.Context, p *model.Player, guid uint32) (bool, error) {
	var (
		levelPercent, soul, sex                    int16
		lookHead, lookBody, lookLegs, lookFeet     int16
		lookAddons, posZ, templeZ, direction       int16
		experience                                 int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT name, level, level_percent, experience, health, health_max,
		        mana, mana_max, soul, cap, vocation, sex, magic_level,
		        look_type, look_head, look_body, look_legs, look_feet, look_addons,
		        pos_x, pos_y, pos_z, temple_x, temple_y, temple_z,
		        base_speed, stamina, direction, last_login
		 FROM players WHERE id = $1`, guid,
	).Scan(
		&p.CreatureName, &p.Level, &levelPercent, &experience, &p.HP, &p.MaxHP,
		&p.Mana, &p.MaxMana, &soul, &p.Capacity, &p.Vocation.ID, &sex, &p.Magic.Level,
		&p.Look.LookType, &lookHead, &lookBody, &lookLegs, &lookFeet, &lookAddons,
		&p.LoginPosition.X, &p.LoginPosition.Y, &posZ,
		&p.TemplePosition.X, &p.TemplePosition.Y, &templeZ,
		&p.BaseSpeed, &p.StaminaMinutes, &direction, &p.LastLoginSaved,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("loading player %d: %w", guid, err)
	}

	p.LevelPercent = uint8(levelPercent)
	p.Experience = uint64(experience)
	p.Soul = uint8(soul)
	p.Sex = uint8(sex)
	p.Look.Head = uint8(lookHead)
	p.Look.Body = uint8(lookBody)
	p.Look.Legs = uint8(lookLegs)
	p.Look.Feet = uint8(lookFeet)
	p.Look.Addons = uint8(lookAddons)
	p.LoginPosition.Z = uint8(posZ)
	p.TemplePosition.Z = uint8(templeZ)
	p.Dir = model.Direction(direction)
	p.FreeCapacity = p.Capacity
	p.Speed = p.BaseSpeed
	return true, nil
}

// VIPEntries returns the account's VIP list.
func (r *PostgresSessionStore) VIPEntries(ctx context.Context, accountID uint32) ([]model.VIPEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT v.player_id, p.name, v.description, v.icon, v.notify
		 FROM account_vip_list v
		 JOIN players p ON p.id = v.player_id
		 WHERE v.account_id = $1
		 ORDER BY p.name`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying vip list for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var entries []model.VIPEntry
	for rows.Next() {
		var e model.VIPEntry
		if err := rows.Scan(&e.GUID, &e.Name, &e.Description, &e.Icon, &e.Notify); err != nil {
			return nil, fmt.Errorf("scanning vip entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading vip list: %w", err)
	}
	return entries, nil
}

// StampLogin records the last login time and address of a character.
func (r *PostgresSessionStore) StampLogin(ctx context.Context, guid uint32, lastLogin int64, ip string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE players SET last_login = $2, last_ip = $3 WHERE id = $1`,
		guid, lastLogin, ip)
	if err != nil {
		return fmt.Errorf("stamping login for player %d: %w", guid, err)
	}
	return nil
}
