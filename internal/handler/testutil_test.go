package handler

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/config"
	"github.com/artfeed/backend/internal/model"
	"github.com/artfeed/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserStore struct {
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, login, passwordHash, description string) error {
	if _, ok := f.users[login]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	f.users[login] = &model.User{
		ID:           int64(len(f.users) + 1),
		Login:        login,
		PasswordHash: passwordHash,
		Description:  description,
	}
	return nil
}

func (f *fakeUserStore) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	user, ok := f.users[login]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) UserExists(_ context.Context, login string) (bool, error) {
	_, ok := f.users[login]
	return ok, nil
}

func (f *fakeUserStore) CredentialsValid(_ context.Context, login, passwordHash string) (bool, error) {
	user, ok := f.users[login]
	return ok && user.PasswordHash == passwordHash, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, login, passwordHash string) error {
	if user, ok := f.users[login]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUserStore) GetAuthorInfo(_ context.Context, login string) (*model.AuthorInfo, error) {
	user, ok := f.users[login]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &model.AuthorInfo{Login: user.Login, Description: user.Description}, nil
}

type memImageBackend struct {
	nextID   int
	payloads map[string][]byte
	lists    map[int64][]string
}

func newMemImageBackend() *memImageBackend {
	return &memImageBackend{payloads: map[string][]byte{}, lists: map[int64][]string{}}
}

func (m *memImageBackend) key(articleID int64, imageID string) string {
	return fmt.Sprintf("%d:%s", articleID, imageID)
}

func (m *memImageBackend) AddImages(_ context.Context, articleID int64, payloads [][]byte) ([]string, error) {
	ids := []string{}
	for _, payload := range payloads {
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

type fakeArticleStore struct {
	nextID   int64
	articles map[int64]*model.Article
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: map[int64]*model.Article{}}
}

func (f *fakeArticleStore) ListAnnouncements(_ context.Context, author string) ([]model.ArticleAnnouncement, error) {
	ids := make([]int64, 0, len(f.articles))
	for id := range f.articles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	list := []model.ArticleAnnouncement{}
	for _, id := range ids {
		a := f.articles[id]
		if author != "" && a.Author != author {
			continue
		}
		list = append(list, model.ArticleAnnouncement{ID: a.ID, Title: a.Title, Author: a.Author})
	}
	return list, nil
}

func (f *fakeArticleStore) GetArticle(_ context.Context, articleID int64) (*model.Article, error) {
	article, ok := f.articles[articleID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *article
	return &clone, nil
}

func (f *fakeArticleStore) InsertArticles(_ context.Context, authorLogin string, articles []model.NewArticle) error {
	for _, a := range articles {
		f.nextID++
		f.articles[f.nextID] = &model.Article{
			ID:     f.nextID,
			Title:  a.Title,
			Author: authorLogin,
			Body:   a.Body,
		}
	}
	return nil
}

func (f *fakeArticleStore) DeleteArticle(_ context.Context, articleID int64) error {
	delete(f.articles, articleID)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	auth     *service.AuthService
	users    *fakeUserStore
	articles *fakeArticleStore
	images   *memImageBackend
}

// newTestEnv wires the router the same way main does, on fakes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserStore()
	articles := newFakeArticleStore()
	images := newMemImageBackend()

	hasher, err := service.NewPasswordHasher(service.SchemeSHA256)
	if err != nil {
		t.Fatalf("NewPasswordHasher error: %v", err)
	}
	authSvc, err := service.NewAuthService(users, hasher, config.AuthConfig{
		JWTSecret: "test-secret",
		JWTTTL:    "1h",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService error: %v", err)
	}

	imageSvc := service.NewImageService(images, zerolog.Nop())
	articleSvc := service.NewArticleService(articles, imageSvc, zerolog.Nop())

	authHandler := NewAuthHandler(authSvc)
	feedHandler := NewFeedHandler(articleSvc, imageSvc)
	userHandler := NewUserHandler(authSvc)

	router := gin.New()
	router.GET("/ping", Ping)

	auth := router.Group("/auth")
	{
		auth.POST("/sign_up", authHandler.SignUp)
		auth.POST("/sign_in", authHandler.SignIn)
		auth.POST("/change_password", AuthMiddleware(authSvc), authHandler.ChangePassword)
	}

	feed := router.Group("/feed", AuthMiddleware(authSvc))
	{
		feed.GET("/articles", feedHandler.GetArticles)
		feed.GET("/article", feedHandler.GetArticle)
		feed.POST("/add_article", feedHandler.AddArticle)
		feed.POST("/remove_article", feedHandler.RemoveArticle)
		feed.POST("/add_images", feedHandler.AddImages)
		feed.POST("/remove_images", feedHandler.RemoveImages)
		feed.GET("/image", feedHandler.GetImage)
	}

	usersGroup := router.Group("/users", AuthMiddleware(authSvc))
	{
		usersGroup.GET("/author", userHandler.GetAuthor)
	}

	return &testEnv{
		router:   router,
		auth:     authSvc,
		users:    users,
		articles: articles,
		images:   images,
	}
}

func (e *testEnv) bearer(t *testing.T, login string) string {
	t.Helper()
	token, err := e.auth.IssueSession(login)
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}
	return "Bearer " + token
}
