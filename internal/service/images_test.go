package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/model"
)

// memImageBackend mirrors the backend contract in memory: a payload map
// plus an ordered membership list per article. failAfter > 0 makes the
// n+1-th AddImages payload fail, for partial-batch tests.
type memImageBackend struct {
	nextID    int
	payloads  map[string][]byte
	lists     map[int64][]string
	failAfter int
}

func newMemImageBackend() *memImageBackend {
	return &memImageBackend{
		payloads:  map[string][]byte{},
		lists:     map[int64][]string{},
		failAfter: -1,
	}
}

func (m *memImageBackend) key(articleID int64, imageID string) string {
	return fmt.Sprintf("%d:%s", articleID, imageID)
}

func (m *memImageBackend) AddImages(_ context.Context, articleID int64, payloads [][]byte) ([]string, error) {
	ids := []string{}
	for i, payload := range payloads {
		if m.failAfter >= 0 && i >= m.failAfter {
			return ids, errors.New("backend write failed")
		}
		m.nextID++
		id := fmt.Sprintf("img-%d", m.nextID)
		m.payloads[m.key(articleID, id)] = payload
		m.lists[articleID] = append(m.lists[articleID], id)
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memImageBackend) ListImages(_ context.Context, articleID int64, opts model.ImageListOptions) ([]string, error) {
	ids := m.lists[articleID]
	if opts.FirstOnly {
		if len(ids) == 0 {
			return []string{}, nil
		}
		return ids[:1], nil
	}
	if opts.Limit > 0 && opts.Limit < len(ids) {
		return ids[:opts.Limit], nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *memImageBackend) GetImageBytes(_ context.Context, articleID int64, imageID string) ([]byte, error) {
	payload, ok := m.payloads[m.key(articleID, imageID)]
	if !ok {
		return nil, redis.Nil
	}
	return payload, nil
}

func (m *memImageBackend) DeleteImages(_ context.Context, articleID int64, imageIDs []string) ([]string, error) {
	deleted := []string{}
	for _, imageID := range imageIDs {
		key := m.key(articleID, imageID)
		if _, ok := m.payloads[key]; !ok {
			continue
		}
		delete(m.payloads, key)
		kept := m.lists[articleID][:0]
		for _, id := range m.lists[articleID] {
			if id != imageID {
				kept = append(kept, id)
			}
		}
		m.lists[articleID] = kept
		deleted = append(deleted, imageID)
	}
	return deleted, nil
}

func newTestImageService() (*ImageService, *memImageBackend) {
	backend := newMemImageBackend()
	return NewImageService(backend, zerolog.Nop()), backend
}

func TestAddAndListImages(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestImageService()

	payloads := [][]byte{[]byte("b1"), []byte("b2"), []byte("b3")}
	ids, err := svc.AddImages(ctx, 5, payloads)
	if err != nil {
		t.Fatalf("AddImages error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("AddImages returned %d ids, want 3", len(ids))
	}

	listed, err := svc.ListImages(ctx, 5, model.ImageListOptions{})
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("ListImages returned %d ids, want 3", len(listed))
	}
	for i := range ids {
		if listed[i] != ids[i] {
			t.Fatalf("order mismatch at %d: %q vs %q", i, listed[i], ids[i])
		}
	}

	first, err := svc.ListImages(ctx, 5, model.ImageListOptions{FirstOnly: true})
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(first) != 1 || first[0] != ids[0] {
		t.Fatalf("FirstOnly = %v, want [%s]", first, ids[0])
	}

	limited, err := svc.ListImages(ctx, 5, model.ImageListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Limit=2 returned %d ids", len(limited))
	}

	for i, id := range ids {
		payload, err := svc.GetImageBytes(ctx, 5, id)
		if err != nil {
			t.Fatalf("GetImageBytes(%s) error: %v", id, err)
		}
		if !bytes.Equal(payload, payloads[i]) {
			t.Fatalf("payload mismatch for %s", id)
		}
	}
}

func TestListImagesEmptyArticle(t *testing.T) {
	svc, _ := newTestImageService()

	ids, err := svc.ListImages(context.Background(), 42, model.ImageListOptions{})
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ListImages on empty article = %v, want empty", ids)
	}
}

func TestDeleteImages(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestImageService()

	ids, err := svc.AddImages(ctx, 5, [][]byte{[]byte("b1"), []byte("b2"), []byte("b3")})
	if err != nil {
		t.Fatalf("AddImages error: %v", err)
	}

	deleted, err := svc.DeleteImages(ctx, 5, []string{ids[1]})
	if err != nil {
		t.Fatalf("DeleteImages error: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != ids[1] {
		t.Fatalf("deleted = %v, want [%s]", deleted, ids[1])
	}

	listed, err := svc.ListImages(ctx, 5, model.ImageListOptions{})
	if err != nil {
		t.Fatalf("ListImages error: %v", err)
	}
	if len(listed) != 2 || listed[0] != ids[0] || listed[1] != ids[2] {
		t.Fatalf("list after delete = %v, want [%s %s]", listed, ids[0], ids[2])
	}

	if _, err := svc.GetImageBytes(ctx, 5, ids[1]); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("GetImageBytes(deleted) error = %v, want ErrImageNotFound", err)
	}
}

func TestDeleteImagesUnknownID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestImageService()

	ids, err := svc.AddImages(ctx, 5, [][]byte{[]byte("b1")})
	if err != nil {
		t.Fatalf("AddImages error: %v", err)
	}

	deleted, err := svc.DeleteImages(ctx, 5, []string{"no-such-id"})
	if err != nil {
		t.Fatalf("DeleteImages error: %v", err)
	}
	if len(deleted) != 0 {
		t.Fatalf("deleted = %v, want empty", deleted)
	}

	listed, _ := svc.ListImages(ctx, 5, model.ImageListOptions{})
	if len(listed) != 1 || listed[0] != ids[0] {
		t.Fatalf("existing list disturbed: %v", listed)
	}
}

func TestAddImagesPartialFailure(t *testing.T) {
	ctx := context.Background()
	backend := newMemImageBackend()
	backend.failAfter = 2
	svc := NewImageService(backend, zerolog.Nop())

	ids, err := svc.AddImages(ctx, 7, [][]byte{[]byte("b1"), []byte("b2"), []byte("b3")})
	if err == nil {
		t.Fatal("expected error from failing backend, got nil")
	}
	// The first two payloads stay persisted; no rollback across the batch.
	if len(ids) != 2 {
		t.Fatalf("persisted ids = %v, want the first two", ids)
	}
	listed, _ := svc.ListImages(ctx, 7, model.ImageListOptions{})
	if len(listed) != 2 {
		t.Fatalf("membership list = %v, want two entries", listed)
	}
}

func TestDeleteArticleImages(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestImageService()

	if _, err := svc.AddImages(ctx, 9, [][]byte{[]byte("b1"), []byte("b2")}); err != nil {
		t.Fatalf("AddImages error: %v", err)
	}

	if err := svc.DeleteArticleImages(ctx, 9); err != nil {
		t.Fatalf("DeleteArticleImages error: %v", err)
	}

	if len(backend.lists[9]) != 0 {
		t.Fatalf("membership list not emptied: %v", backend.lists[9])
	}
	if len(backend.payloads) != 0 {
		t.Fatalf("payloads not deleted: %d left", len(backend.payloads))
	}
}
