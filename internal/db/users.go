package db

import (
	"context"

	"github.com/artfeed/backend/internal/model"
)

func (db *Postgres) CreateUser(ctx context.Context, login, passwordHash, description string) error {
	query := `
		INSERT INTO users (login, password_hash, description)
		VALUES ($1, $2, $3)
	`
	if _, err := db.Pool.Exec(ctx, query, login, passwordHash, description); err != nil {
		return err
	}
	return nil
}

func (db *Postgres) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	query := `
		SELECT id, login, password_hash, description
		FROM users
		WHERE login = $1
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, login).Scan(
		&user.ID,
		&user.Login,
		&user.PasswordHash,
		&user.Description,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) UserExists(ctx context.Context, login string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE login = $1)`

	var exists bool
	if err := db.Pool.QueryRow(ctx, query, login).Scan(&exists); err != nil {
		db.log.Error().Err(err).Str("op", "user_exists").Str("login", login).Msg("query failed")
		return false, err
	}
	return exists, nil
}

// CredentialsValid reports whether a user with the given login stores
// exactly the given digest. Only usable with a deterministic digest scheme.
func (db *Postgres) CredentialsValid(ctx context.Context, login, passwordHash string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE login = $1 AND password_hash = $2)`

	var valid bool
	if err := db.Pool.QueryRow(ctx, query, login, passwordHash).Scan(&valid); err != nil {
		db.log.Error().Err(err).Str("op", "credentials_valid").Str("login", login).Msg("query failed")
		return false, err
	}
	return valid, nil
}

func (db *Postgres) UpdatePassword(ctx context.Context, login, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE login = $2`

	if _, err := db.Pool.Exec(ctx, query, passwordHash, login); err != nil {
		db.log.Error().Err(err).Str("op", "update_password").Str("login", login).Msg("update failed")
		return err
	}
	return nil
}

func (db *Postgres) GetAuthorInfo(ctx context.Context, login string) (*model.AuthorInfo, error) {
	query := `SELECT login, description FROM users WHERE login = $1`

	var info model.AuthorInfo
	err := db.Pool.QueryRow(ctx, query, login).Scan(&info.Login, &info.Description)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
