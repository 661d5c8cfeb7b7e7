package kv

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/model"
)

// Key-value backend for the image-reference index.
//
// Payloads live under image:<article_id>:<image_id>; the per-article
// membership list is a Redis list at article:<article_id>:images whose
// RPUSH/LREM give the index its atomic append and remove-by-value.
type ImageStore struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewImageStore(rdb *redis.Client, log zerolog.Logger) *ImageStore {
	return &ImageStore{
		rdb: rdb,
		log: log.With().Str("component", "redis_images").Logger(),
	}
}

func imageKey(articleID int64, imageID string) string {
	return fmt.Sprintf("image:%d:%s", articleID, imageID)
}

func articleImagesKey(articleID int64) string {
	return fmt.Sprintf("article:%d:images", articleID)
}

func (s *ImageStore) AddImages(ctx context.Context, articleID int64, payloads [][]byte) ([]string, error) {
	listKey := articleImagesKey(articleID)

	ids := make([]string, 0, len(payloads))
	for _, payload := range payloads {
		imageID := uuid.NewString()
		if err := s.rdb.Set(ctx, imageKey(articleID, imageID), payload, 0).Err(); err != nil {
			// Earlier payloads in the batch stay persisted.
			s.log.Error().Err(err).Str("op", "add_images").Int64("article_id", articleID).Msg("set failed")
			return ids, err
		}
		if err := s.rdb.RPush(ctx, listKey, imageID).Err(); err != nil {
			s.log.Error().Err(err).Str("op", "add_images").Int64("article_id", articleID).Str("image_id", imageID).Msg("rpush failed")
			return ids, err
		}
		ids = append(ids, imageID)
	}
	return ids, nil
}

func (s *ImageStore) ListImages(ctx context.Context, articleID int64, opts model.ImageListOptions) ([]string, error) {
	stop := int64(-1)
	switch {
	case opts.FirstOnly:
		stop = 0
	case opts.Limit > 0:
		stop = int64(opts.Limit) - 1
	}

	ids, err := s.rdb.LRange(ctx, articleImagesKey(articleID), 0, stop).Result()
	if err != nil {
		s.log.Error().Err(err).Str("op", "list_images").Int64("article_id", articleID).Msg("lrange failed")
		return nil, err
	}
	return ids, nil
}

func (s *ImageStore) GetImageBytes(ctx context.Context, articleID int64, imageID string) ([]byte, error) {
	payload, err := s.rdb.Get(ctx, imageKey(articleID, imageID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Error().Err(err).Str("op", "get_image").Int64("article_id", articleID).Str("image_id", imageID).Msg("get failed")
		}
		return nil, err
	}
	return payload, nil
}

func (s *ImageStore) DeleteImages(ctx context.Context, articleID int64, imageIDs []string) ([]string, error) {
	listKey := articleImagesKey(articleID)

	deleted := []string{}
	for _, imageID := range imageIDs {
		removed, err := s.rdb.Del(ctx, imageKey(articleID, imageID)).Result()
		if err != nil {
			s.log.Error().Err(err).Str("op", "delete_images").Int64("article_id", articleID).Str("image_id", imageID).Msg("del failed")
			return deleted, err
		}
		if removed == 0 {
			continue // unknown identifiers are skipped, not errors
		}
		// Membership is removed only after the payload delete succeeded.
		if err := s.rdb.LRem(ctx, listKey, 0, imageID).Err(); err != nil {
			s.log.Error().Err(err).Str("op", "delete_images").Int64("article_id", articleID).Str("image_id", imageID).Msg("lrem failed")
			return deleted, err
		}
		deleted = append(deleted, imageID)
	}
	return deleted, nil
}
