package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/middleware"
	"github.com/vidhub/backend/internal/models"
)

type testEnv struct {
	t        *testing.T
	db       *memDB
	media    *fakeMedia
	janitor  *fakeJanitor
	sessions *auth.Manager
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newMemDB()
	env := &testEnv{t: t, db: db, media: &fakeMedia{}, janitor: &fakeJanitor{}}
	env.sessions = auth.NewManager(auth.Settings{
		AccessSecret:  []byte("test-access"),
		AccessTTL:     time.Hour,
		RefreshSecret: []byte("test-refresh"),
		RefreshTTL:    24 * time.Hour,
		Issuer:        "vidhub-test",
	}, db.creds)

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), true))
	RegisterRoutes(router, Dependencies{
		Users:         memUsers{db},
		Sessions:      env.sessions,
		Videos:        memVideos{db},
		Comments:      memComments{db},
		Likes:         memLikes{db},
		Subscriptions: memSubscriptions{db},
		Playlists:     memPlaylists{db},
		Tweets:        memTweets{db},
		Read:          memReadModel{db},
		Media:         env.media,
		Janitor:       env.janitor,
		Uploads:       UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
		ExposeErrors:  true,
		SecureCookies: true,
	})
	env.router = router
	return env
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
	Stack      string          `json:"stack"`
}

func (e envelope) decode(t *testing.T, dst any) {
	t.Helper()
	if err := json.Unmarshal(e.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

type result struct {
	*httptest.ResponseRecorder
	body envelope
}

func (e *testEnv) send(req *http.Request, token string) result {
	e.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	res := result{ResponseRecorder: rec}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &res.body); err != nil {
			e.t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
		}
	}
	return res
}

func (e *testEnv) doJSON(method, path string, payload any, token string) result {
	e.t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			e.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return e.send(req, token)
}

// doMultipart sends fields and files, where files maps a field name to a filename.
func (e *testEnv) doMultipart(method, path string, fields, files map[string]string, token string) result {
	e.t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			e.t.Fatalf("write field: %v", err)
		}
	}
	for name, filename := range files {
		part, err := writer.CreateFormFile(name, filename)
		if err != nil {
			e.t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("content of " + filename)); err != nil {
			e.t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		e.t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.send(req, token)
}

func expectStatus(t *testing.T, res result, want int) {
	t.Helper()
	if res.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, res.Code, res.Body.String())
	}
}

// seedUser stores a user directly and returns it with a valid access token.
func (e *testEnv) seedUser(username string) (models.User, string) {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		e.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		Fullname:  username + " Example",
		Avatar:    "https://cdn.test/" + username + ".png",
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := (memUsers{e.db}).Create(context.Background(), user); err != nil {
		e.t.Fatalf("seed user: %v", err)
	}
	tokens, err := e.sessions.Issue(context.Background(), user.ID)
	if err != nil {
		e.t.Fatalf("issue tokens: %v", err)
	}
	return user, tokens.AccessToken
}

func (e *testEnv) seedVideo(ownerID, title string, views int64, published bool) models.Video {
	e.t.Helper()
	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		VideoFile:   "https://cdn.test/" + title + ".mp4",
		Thumbnail:   "https://cdn.test/" + title + ".png",
		Title:       title,
		Description: "about " + title,
		Duration:    float64(len(title)),
		Views:       views,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := (memVideos{e.db}).Create(context.Background(), video); err != nil {
		e.t.Fatalf("seed video: %v", err)
	}
	return video
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, http.NoBody)
}
