package db

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/artfeed/backend/internal/model"
)

// Relational backend for the image-reference index. Identifiers are the
// BIGSERIAL row ids rendered as decimal strings; insertion order equals
// id order, so the membership list is the article's rows ordered by id.

func (db *Postgres) AddImages(ctx context.Context, articleID int64, payloads [][]byte) ([]string, error) {
	query := `INSERT INTO images (article_id, image) VALUES ($1, $2) RETURNING image_id`

	ids := make([]string, 0, len(payloads))
	for _, payload := range payloads {
		var id int64
		if err := db.Pool.QueryRow(ctx, query, articleID, payload).Scan(&id); err != nil {
			// Earlier inserts in the batch stay persisted.
			db.log.Error().Err(err).Str("op", "add_images").Int64("article_id", articleID).Msg("insert failed")
			return ids, err
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, nil
}

func (db *Postgres) ListImages(ctx context.Context, articleID int64, opts model.ImageListOptions) ([]string, error) {
	query := `SELECT image_id FROM images WHERE article_id = $1 ORDER BY image_id`
	args := []any{articleID}

	limit := opts.Limit
	if opts.FirstOnly {
		limit = 1
	}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		db.log.Error().Err(err).Str("op", "list_images").Int64("article_id", articleID).Msg("query failed")
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (db *Postgres) GetImageBytes(ctx context.Context, articleID int64, imageID string) ([]byte, error) {
	id, err := strconv.ParseInt(imageID, 10, 64)
	if err != nil {
		// Not a row id, so it was never persisted by this backend.
		return nil, pgx.ErrNoRows
	}

	query := `SELECT image FROM images WHERE article_id = $1 AND image_id = $2`

	var payload []byte
	if err := db.Pool.QueryRow(ctx, query, articleID, id).Scan(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (db *Postgres) DeleteImages(ctx context.Context, articleID int64, imageIDs []string) ([]string, error) {
	query := `DELETE FROM images WHERE article_id = $1 AND image_id = $2`

	deleted := []string{}
	for _, imageID := range imageIDs {
		id, err := strconv.ParseInt(imageID, 10, 64)
		if err != nil {
			continue // unknown identifiers are skipped, not errors
		}
		tag, err := db.Pool.Exec(ctx, query, articleID, id)
		if err != nil {
			db.log.Error().Err(err).Str("op", "delete_images").Int64("article_id", articleID).Str("image_id", imageID).Msg("delete failed")
			return deleted, err
		}
		if tag.RowsAffected() > 0 {
			deleted = append(deleted, imageID)
		}
	}
	return deleted, nil
}
