package db

import (
	"context"

	"github.com/artfeed/backend/internal/model"
)

// ListAnnouncements returns article previews, optionally filtered by author login.
func (db *Postgres) ListAnnouncements(ctx context.Context, author string) ([]model.ArticleAnnouncement, error) {
	query := `
		SELECT art.article_id, art.title, us.login, art.announcement
		FROM articles art
		JOIN users us ON art.user_id = us.id
	`
	args := []any{}
	if author != "" {
		query += ` WHERE us.login = $1`
		args = append(args, author)
	}
	query += ` ORDER BY art.article_id`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		db.log.Error().Err(err).Str("op", "list_announcements").Str("author", author).Msg("query failed")
		return nil, err
	}
	defer rows.Close()

	var list []model.ArticleAnnouncement
	for rows.Next() {
		var a model.ArticleAnnouncement
		if err := rows.Scan(&a.ID, &a.Title, &a.Author, &a.Announcement); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if list == nil {
		list = []model.ArticleAnnouncement{}
	}
	return list, nil
}

func (db *Postgres) GetArticle(ctx context.Context, articleID int64) (*model.Article, error) {
	query := `
		SELECT art.article_id, art.title, us.login, art.article_body
		FROM articles art
		JOIN users us ON art.user_id = us.id
		WHERE art.article_id = $1
	`
	var a model.Article
	err := db.Pool.QueryRow(ctx, query, articleID).Scan(&a.ID, &a.Title, &a.Author, &a.Body)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// InsertArticles stores the batch in one transaction, resolving the author's
// user id from the login.
func (db *Postgres) InsertArticles(ctx context.Context, authorLogin string, articles []model.NewArticle) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		db.log.Error().Err(err).Str("op", "insert_articles").Str("author", authorLogin).Msg("begin failed")
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO articles (title, user_id, announcement, article_body)
		SELECT $1, id, $3, $4 FROM users WHERE login = $2
	`
	for _, article := range articles {
		if _, err := tx.Exec(ctx, query, article.Title, authorLogin, article.Announcement, article.Body); err != nil {
			db.log.Error().Err(err).Str("op", "insert_articles").Str("author", authorLogin).Msg("insert failed")
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Postgres) DeleteArticle(ctx context.Context, articleID int64) error {
	query := `DELETE FROM articles WHERE article_id = $1`

	if _, err := db.Pool.Exec(ctx, query, articleID); err != nil {
		db.log.Error().Err(err).Str("op", "delete_article").Int64("article_id", articleID).Msg("delete failed")
		return err
	}
	return nil
}
