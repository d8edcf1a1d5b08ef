package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openlms/auth/internal/directory/domain"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, roles, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, joinRoles(u.Roles), u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, roles, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByLogin(ctx context.Context, usernameOrEmail string) (domain.User, error) {
	// Username and email columns are COLLATE NOCASE, so one query covers
	// both login styles without an extra lookup.
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, roles, created_at, updated_at
		FROM users WHERE username = ? OR email = ?`,
		usernameOrEmail, usernameOrEmail)
	return scanUser(row)
}

func (r *usersRepo) UpdateRoles(ctx context.Context, id string, roles []string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET roles = ?, updated_at = ? WHERE id = ?`,
		joinRoles(roles), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var roles string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Roles = splitRoles(roles)
	return u, nil
}
