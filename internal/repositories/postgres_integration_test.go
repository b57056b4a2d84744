package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	dup := user
	dup.ID = uuid.NewString()
	dup.Email = "other@example.com"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	found, err := repo.Exists(ctx, "nobody", user.Email)
	if err != nil || !found {
		t.Fatalf("expected email to be taken, got %v %v", found, err)
	}

	byLogin, err := repo.FindByLogin(ctx, "", user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byLogin.ID != user.ID || byLogin.Password != user.Password {
		t.Fatalf("unexpected user fetched: %+v", byLogin)
	}
	if _, err := repo.FindByLogin(ctx, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty identifiers to match nothing, got %v", err)
	}

	updated, err := repo.UpdateAccount(ctx, user.ID, "Alice Liddell", "liddell@example.com")
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.Fullname != "Alice Liddell" || updated.Email != "liddell@example.com" {
		t.Fatalf("expected updated fields to persist, got %+v", updated)
	}

	bob := createTestUser(t, repo, "bob")
	if _, err := repo.UpdateAccount(ctx, bob.ID, "Bob", "liddell@example.com"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for taken email, got %v", err)
	}

	if _, err := repo.UpdateAvatar(ctx, uuid.NewString(), "https://cdn/x.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
	if err := repo.UpdatePassword(ctx, user.ID, "rotated-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	reloaded, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if reloaded.Password != "rotated-hash" || reloaded.WatchHistory == nil {
		t.Fatalf("unexpected reloaded user %+v", reloaded)
	}
	if _, err := repo.FindByID(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected malformed id to be not found, got %v", err)
	}
}

func TestPostgresUserRepository_RefreshTokens(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "carol")

	if token, err := repo.RefreshToken(ctx, user.ID); err != nil || token != "" {
		t.Fatalf("expected no token yet, got %q %v", token, err)
	}
	if err := repo.SetRefreshToken(ctx, user.ID, "first"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, user.ID, "first", "second"); err != nil {
		t.Fatalf("swap token: %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, user.ID, "first", "third"); !errors.Is(err, auth.ErrRefreshTokenReused) {
		t.Fatalf("expected reuse to fail, got %v", err)
	}
	if err := repo.ClearRefreshToken(ctx, user.ID); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if token, _ := repo.RefreshToken(ctx, user.ID); token != "" {
		t.Fatalf("expected cleared token, got %q", token)
	}

	ghost := uuid.NewString()
	if err := repo.SetRefreshToken(ctx, ghost, "x"); !errors.Is(err, auth.ErrUnknownUser) {
		t.Fatalf("expected unknown user, got %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, ghost, "x", "y"); !errors.Is(err, auth.ErrUnknownUser) {
		t.Fatalf("expected unknown user on swap, got %v", err)
	}
	if _, err := repo.RefreshToken(ctx, ghost); !errors.Is(err, auth.ErrUnknownUser) {
		t.Fatalf("expected unknown user on read, got %v", err)
	}
}

func TestPostgresVideoRepository_ListAndMutate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	owner := createTestUser(t, users, "owner")
	other := createTestUser(t, users, "other")

	base := time.Now().UTC().Add(-time.Hour)
	first := createTestVideo(t, videos, owner.ID, "Go Concurrency", 30, base)
	second := createTestVideo(t, videos, owner.ID, "Postgres Tips", 10, base.Add(time.Minute))
	third := createTestVideo(t, videos, other.ID, "Cooking with Go", 20, base.Add(2*time.Minute))
	hidden := createTestVideo(t, videos, owner.ID, "Draft", 99, base.Add(3*time.Minute))
	if _, err := videos.SetPublished(ctx, hidden.ID, false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	all, err := videos.List(ctx, models.VideoFilter{}, models.PageRequest{Page: 1, Limit: 10, SortBy: models.SortCreatedAt})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != third.ID || all[2].ID != first.ID {
		t.Fatalf("unexpected newest-first listing %+v", all)
	}

	page2, err := videos.List(ctx, models.VideoFilter{}, models.PageRequest{Page: 2, Limit: 2, SortBy: models.SortDuration, Ascending: true})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != first.ID {
		t.Fatalf("unexpected second page %+v", page2)
	}

	search, err := videos.List(ctx, models.VideoFilter{Query: "go", OwnerID: owner.ID}, models.PageRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(search) != 1 || search[0].ID != first.ID {
		t.Fatalf("unexpected search result %+v", search)
	}
	wildcard, err := videos.List(ctx, models.VideoFilter{Query: "G_"}, models.PageRequest{Page: 1, Limit: 10})
	if err != nil || len(wildcard) != 0 {
		t.Fatalf("expected wildcard characters to match literally, got %+v %v", wildcard, err)
	}

	beyond, err := videos.List(ctx, models.VideoFilter{}, models.PageRequest{Page: math.MaxInt, Limit: 100})
	if err != nil || len(beyond) != 0 {
		t.Fatalf("expected empty page far past the end, got %+v %v", beyond, err)
	}

	updated, err := videos.Update(ctx, models.Video{ID: second.ID, Title: "Postgres Tricks", Description: "d", Thumbnail: "https://cdn/t2.png"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Postgres Tricks" || updated.OwnerID != owner.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if err := videos.RecordView(ctx, other.ID, first.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}
	if err := videos.RecordView(ctx, other.ID, second.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}
	if err := videos.RecordView(ctx, other.ID, first.ID); err != nil {
		t.Fatalf("record repeat view: %v", err)
	}
	viewed, _ := videos.FindByID(ctx, first.ID)
	if viewed.Views != 2 {
		t.Fatalf("expected 2 views, got %d", viewed.Views)
	}
	viewer, _ := users.FindByID(ctx, other.ID)
	if len(viewer.WatchHistory) != 2 || viewer.WatchHistory[0] != first.ID {
		t.Fatalf("expected deduplicated history with latest first, got %v", viewer.WatchHistory)
	}
	if err := videos.RecordView(ctx, other.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound recording missing video, got %v", err)
	}

	if err := videos.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := videos.Delete(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
	if _, err := videos.FindByID(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted video to be gone, got %v", err)
	}
}

func TestPostgresCommentAndTweetRepositories(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	comments := NewPostgresCommentRepository(testPool)
	tweets := NewPostgresTweetRepository(testPool)

	author := createTestUser(t, users, "author")
	video := createTestVideo(t, videos, author.ID, "Clip", 5, time.Now().UTC())

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		c := models.Comment{ID: uuid.NewString(), VideoID: video.ID, OwnerID: author.ID, Content: fmt.Sprintf("c%d", i),
			CreatedAt: now.Add(time.Duration(i) * time.Second), UpdatedAt: now}
		if err := comments.Create(ctx, c); err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}
	orphan := models.Comment{ID: uuid.NewString(), VideoID: uuid.NewString(), OwnerID: author.ID, Content: "x", CreatedAt: now, UpdatedAt: now}
	if err := comments.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}

	listed, err := comments.ListByVideo(ctx, video.ID, models.PageRequest{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(listed) != 2 || listed[0].Content != "c2" || listed[0].Owner.Username != "author" {
		t.Fatalf("unexpected comment page %+v", listed)
	}
	oldest, err := comments.ListByVideo(ctx, video.ID, models.PageRequest{Page: 1, Limit: 2, SortBy: models.SortCreatedAt, Ascending: true})
	if err != nil {
		t.Fatalf("list comments ascending: %v", err)
	}
	if len(oldest) != 2 || oldest[0].Content != "c0" || oldest[1].Content != "c1" {
		t.Fatalf("unexpected ascending comment page %+v", oldest)
	}

	edited, err := comments.UpdateContent(ctx, listed[0].ID, "edited")
	if err != nil || edited.Content != "edited" {
		t.Fatalf("update comment: %+v %v", edited, err)
	}
	if err := comments.Delete(ctx, listed[0].ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if _, err := comments.FindByID(ctx, listed[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted comment to be gone, got %v", err)
	}

	older := models.Tweet{ID: uuid.NewString(), OwnerID: author.ID, Content: "first", CreatedAt: now.Add(-time.Minute), UpdatedAt: now}
	newer := models.Tweet{ID: uuid.NewString(), OwnerID: author.ID, Content: "second", CreatedAt: now, UpdatedAt: now}
	for _, tw := range []models.Tweet{older, newer} {
		if err := tweets.Create(ctx, tw); err != nil {
			t.Fatalf("create tweet: %v", err)
		}
	}
	feed, err := tweets.ListByOwner(ctx, author.ID)
	if err != nil || len(feed) != 2 || feed[0].ID != newer.ID {
		t.Fatalf("unexpected tweets %+v %v", feed, err)
	}
	if _, err := tweets.UpdateContent(ctx, uuid.NewString(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing tweet, got %v", err)
	}
}

func TestPostgresToggles(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)
	subs := NewPostgresSubscriptionRepository(testPool)

	fan := createTestUser(t, users, "fan")
	creator := createTestUser(t, users, "creator")
	video := createTestVideo(t, videos, creator.ID, "Hit", 3, time.Now().UTC())

	target := models.LikeTarget{Kind: models.LikeVideo, ID: video.ID}
	liked, err := likes.Toggle(ctx, target, fan.ID)
	if err != nil || !liked {
		t.Fatalf("expected first toggle to like, got %v %v", liked, err)
	}
	liked, err = likes.Toggle(ctx, target, fan.ID)
	if err != nil || liked {
		t.Fatalf("expected second toggle to unlike, got %v %v", liked, err)
	}
	if _, err := likes.Toggle(ctx, models.LikeTarget{Kind: models.LikeTweet, ID: uuid.NewString()}, fan.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing tweet, got %v", err)
	}

	subscribed, err := subs.Toggle(ctx, fan.ID, creator.ID)
	if err != nil || !subscribed {
		t.Fatalf("expected subscribe, got %v %v", subscribed, err)
	}
	if n, err := subs.CountSubscribers(ctx, creator.ID); err != nil || n != 1 {
		t.Fatalf("expected 1 subscriber, got %d %v", n, err)
	}
	if n, err := subs.CountSubscriptions(ctx, fan.ID); err != nil || n != 1 {
		t.Fatalf("expected 1 subscription, got %d %v", n, err)
	}
	if subscribed, _ = subs.Toggle(ctx, fan.ID, creator.ID); subscribed {
		t.Fatal("expected unsubscribe")
	}
	if _, err := subs.Toggle(ctx, fan.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing channel, got %v", err)
	}
	if _, err := subs.CountSubscribers(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound counting missing channel, got %v", err)
	}
}

func TestPostgresPlaylistRepository(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	playlists := NewPostgresPlaylistRepository(testPool)
	readModel := NewPostgresReadModel(testPool)

	owner := createTestUser(t, users, "curator")
	a := createTestVideo(t, videos, owner.ID, "A", 1, time.Now().UTC())
	b := createTestVideo(t, videos, owner.ID, "B", 2, time.Now().UTC())

	now := time.Now().UTC()
	playlist := models.Playlist{ID: uuid.NewString(), OwnerID: owner.ID, Name: "Mix", Description: "", CreatedAt: now, UpdatedAt: now}
	if err := playlists.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	for _, id := range []string{b.ID, a.ID, b.ID} {
		if _, err := playlists.AddVideo(ctx, playlist.ID, id); err != nil {
			t.Fatalf("add video: %v", err)
		}
	}
	loaded, err := playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	if len(loaded.VideoIDs) != 2 || loaded.VideoIDs[0] != b.ID || loaded.VideoIDs[1] != a.ID {
		t.Fatalf("expected ordered, deduplicated videos, got %v", loaded.VideoIDs)
	}

	detail, err := readModel.PlaylistDetail(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("playlist detail: %v", err)
	}
	if detail.Owner.Username != "curator" || len(detail.Videos) != 2 || detail.Videos[0].Title != "B" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	removed, err := playlists.RemoveVideo(ctx, playlist.ID, b.ID)
	if err != nil || len(removed.VideoIDs) != 1 {
		t.Fatalf("remove video: %+v %v", removed, err)
	}
	if _, err := playlists.AddVideo(ctx, playlist.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound adding missing video, got %v", err)
	}

	renamed, err := playlists.Update(ctx, playlist.ID, "Mix 2", "desc")
	if err != nil || renamed.Name != "Mix 2" {
		t.Fatalf("update playlist: %+v %v", renamed, err)
	}
	list, err := playlists.ListByOwner(ctx, owner.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list playlists: %+v %v", list, err)
	}
	if err := playlists.Delete(ctx, playlist.ID); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}
	if _, err := playlists.Update(ctx, playlist.ID, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresReadModel_ChannelViews(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	comments := NewPostgresCommentRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)
	subs := NewPostgresSubscriptionRepository(testPool)
	readModel := NewPostgresReadModel(testPool)

	creator := createTestUser(t, users, "creator")
	viewer := createTestUser(t, users, "viewer")
	lurker := createTestUser(t, users, "lurker")

	first := createTestVideo(t, videos, creator.ID, "One", 10, time.Now().UTC().Add(-time.Minute))
	second := createTestVideo(t, videos, creator.ID, "Two", 20, time.Now().UTC())

	for _, v := range []models.Video{first, first, second} {
		if err := videos.RecordView(ctx, viewer.ID, v.ID); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}
	now := time.Now().UTC()
	if err := comments.Create(ctx, models.Comment{ID: uuid.NewString(), VideoID: first.ID, OwnerID: viewer.ID, Content: "nice", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	for _, u := range []models.User{viewer, lurker} {
		if _, err := likes.Toggle(ctx, models.LikeTarget{Kind: models.LikeVideo, ID: second.ID}, u.ID); err != nil {
			t.Fatalf("like: %v", err)
		}
		if _, err := subs.Toggle(ctx, u.ID, creator.ID); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	stats, err := readModel.ChannelStats(ctx, creator.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	want := models.ChannelStats{ID: creator.ID, Username: "creator", Fullname: creator.Fullname,
		TotalVideos: 2, TotalSubscribers: 2, TotalViews: 3, TotalLikes: 2, TotalComments: 1}
	if stats != want {
		t.Fatalf("unexpected stats %+v want %+v", stats, want)
	}

	profile, err := readModel.ChannelProfile(ctx, "CREATOR", viewer.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscribersCount != 2 || profile.ChannelsSubscribedToCount != 0 || !profile.IsSubscribed {
		t.Fatalf("unexpected profile %+v", profile)
	}
	anonymous, err := readModel.ChannelProfile(ctx, "creator", "")
	if err != nil || anonymous.IsSubscribed {
		t.Fatalf("expected anonymous viewer not to be subscribed: %+v %v", anonymous, err)
	}
	if _, err := readModel.ChannelProfile(ctx, "ghost", viewer.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing channel, got %v", err)
	}

	history, err := readModel.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID || history[0].Owner.Username != "creator" {
		t.Fatalf("unexpected history %+v", history)
	}

	liked, err := readModel.LikedVideos(ctx, lurker.ID)
	if err != nil || len(liked) != 1 || liked[0].VideoID != second.ID || liked[0].OwnerID != creator.ID {
		t.Fatalf("unexpected liked videos %+v %v", liked, err)
	}

	channel, err := readModel.ChannelVideos(ctx, creator.ID, models.PageRequest{Page: 1, Limit: 10, SortBy: models.SortCreatedAt})
	if err != nil || len(channel) != 2 || channel[0].ID != second.ID {
		t.Fatalf("unexpected channel videos %+v %v", channel, err)
	}
	window, err := readModel.ChannelVideos(ctx, creator.ID, models.PageRequest{Page: 2, Limit: 1, SortBy: models.SortDuration, Ascending: true})
	if err != nil || len(window) != 1 || window[0].ID != second.ID {
		t.Fatalf("unexpected channel video window %+v %v", window, err)
	}

	if _, err := readModel.ChannelStats(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing channel stats, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE watch_history, playlist_videos, playlists, subscriptions, likes, tweets, comments, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		Fullname:  "Test " + username,
		Avatar:    "https://cdn.example.com/" + username + ".png",
		Password:  "password-hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string, duration float64, createdAt time.Time) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		VideoFile:   "https://cdn.example.com/" + uuid.NewString() + ".mp4",
		Thumbnail:   "https://cdn.example.com/" + uuid.NewString() + ".png",
		Title:       title,
		Description: title + " description",
		Duration:    duration,
		IsPublished: true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
