package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/db"
	"github.com/artfeed/backend/internal/model"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleStore interface {
	ListAnnouncements(ctx context.Context, author string) ([]model.ArticleAnnouncement, error)
	GetArticle(ctx context.Context, articleID int64) (*model.Article, error)
	InsertArticles(ctx context.Context, authorLogin string, articles []model.NewArticle) error
	DeleteArticle(ctx context.Context, articleID int64) error
}

type ArticleService struct {
	store  ArticleStore
	images *ImageService
	log    zerolog.Logger
}

func NewArticleService(store ArticleStore, images *ImageService, log zerolog.Logger) *ArticleService {
	return &ArticleService{
		store:  store,
		images: images,
		log:    log.With().Str("component", "articles").Logger(),
	}
}

// ListAnnouncements returns previews, each carrying the article's first
// image identifier when one exists.
func (s *ArticleService) ListAnnouncements(ctx context.Context, author string) ([]model.ArticleAnnouncement, error) {
	list, err := s.store.ListAnnouncements(ctx, author)
	if err != nil {
		return nil, err
	}

	for i := range list {
		ids, err := s.images.ListImages(ctx, list[i].ID, model.ImageListOptions{FirstOnly: true})
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			list[i].PreviewImage = ids[0]
		}
	}
	return list, nil
}

func (s *ArticleService) GetArticle(ctx context.Context, articleID int64) (*model.Article, error) {
	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrArticleNotFound
		}
		s.log.Error().Err(err).Str("op", "get_article").Int64("article_id", articleID).Msg("article lookup failed")
		return nil, err
	}

	ids, err := s.images.ListImages(ctx, articleID, model.ImageListOptions{})
	if err != nil {
		return nil, err
	}
	article.ImageIDs = ids
	return article, nil
}

// AddArticles stores the batch attributed to authorLogin, which must come
// from the verified session token, never from the request body.
func (s *ArticleService) AddArticles(ctx context.Context, authorLogin string, articles []model.NewArticle) error {
	return s.store.InsertArticles(ctx, authorLogin, articles)
}

// RemoveArticle deletes the article's images first, then the row. The two
// stores are updated independently; there is no cross-store transaction.
func (s *ArticleService) RemoveArticle(ctx context.Context, articleID int64) error {
	if err := s.images.DeleteArticleImages(ctx, articleID); err != nil {
		return err
	}
	return s.store.DeleteArticle(ctx, articleID)
}
