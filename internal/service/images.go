package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/model"
)

var ErrImageNotFound = errors.New("image not found")

// ImageBackend is the image-reference index contract. Two backends
// implement it: the relational store (db.Postgres) and the key-value
// store (kv.ImageStore); one is selected at startup.
type ImageBackend interface {
	AddImages(ctx context.Context, articleID int64, payloads [][]byte) ([]string, error)
	ListImages(ctx context.Context, articleID int64, opts model.ImageListOptions) ([]string, error)
	GetImageBytes(ctx context.Context, articleID int64, imageID string) ([]byte, error)
	DeleteImages(ctx context.Context, articleID int64, imageIDs []string) ([]string, error)
}

type ImageService struct {
	backend ImageBackend
	log     zerolog.Logger
}

func NewImageService(backend ImageBackend, log zerolog.Logger) *ImageService {
	return &ImageService{
		backend: backend,
		log:     log.With().Str("component", "images").Logger(),
	}
}

// AddImages persists the payloads in order and returns their identifiers
// in the same order. On a mid-batch failure the identifiers persisted so
// far are still returned alongside the error; there is no rollback.
func (s *ImageService) AddImages(ctx context.Context, articleID int64, payloads [][]byte) ([]string, error) {
	return s.backend.AddImages(ctx, articleID, payloads)
}

func (s *ImageService) ListImages(ctx context.Context, articleID int64, opts model.ImageListOptions) ([]string, error) {
	return s.backend.ListImages(ctx, articleID, opts)
}

func (s *ImageService) GetImageBytes(ctx context.Context, articleID int64, imageID string) ([]byte, error) {
	payload, err := s.backend.GetImageBytes(ctx, articleID, imageID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return payload, nil
}

// DeleteImages removes the given identifiers and returns the ones that
// were actually deleted; the return value, not the input, is the source
// of truth for what was removed.
func (s *ImageService) DeleteImages(ctx context.Context, articleID int64, imageIDs []string) ([]string, error) {
	return s.backend.DeleteImages(ctx, articleID, imageIDs)
}

// DeleteArticleImages drops the whole membership list of an article,
// used when the article itself goes away.
func (s *ImageService) DeleteArticleImages(ctx context.Context, articleID int64) error {
	ids, err := s.backend.ListImages(ctx, articleID, model.ImageListOptions{})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	deleted, err := s.backend.DeleteImages(ctx, articleID, ids)
	if err != nil {
		return err
	}
	if len(deleted) != len(ids) {
		s.log.Warn().Int64("article_id", articleID).Int("listed", len(ids)).Int("deleted", len(deleted)).Msg("stale image references skipped")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, redis.Nil) || errors.Is(err, ErrImageNotFound)
}
