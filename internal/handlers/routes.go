package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Tweets        TweetStore
	Read          ReadModel
	Media         MediaHost
	Janitor       MediaJanitor
	RateLimiter   middleware.RateLimiter
	Uploads       UploadConfig
	ExposeErrors  bool
	SecureCookies bool
}

// RegisterRoutes wires HTTP handlers into the provided router.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	expose := deps.ExposeErrors
	h := func(fn handlerFunc) http.HandlerFunc { return handle(expose, fn) }
	authenticated := middleware.Authenticate(deps.Sessions, deps.Users, expose)
	throttled := func(scope string) func(http.Handler) http.Handler {
		return middleware.Throttle(deps.RateLimiter, scope, expose)
	}

	users := UserHandler{
		Users:         deps.Users,
		Sessions:      deps.Sessions,
		Videos:        deps.Videos,
		Read:          deps.Read,
		Media:         deps.Media,
		Janitor:       deps.Janitor,
		Uploads:       deps.Uploads,
		SecureCookies: deps.SecureCookies,
	}
	videos := VideoHandler{Videos: deps.Videos, Media: deps.Media, Janitor: deps.Janitor, Uploads: deps.Uploads}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	likes := LikeHandler{Likes: deps.Likes, Read: deps.Read}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Users: deps.Users, Read: deps.Read}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}
	dashboard := DashboardHandler{Read: deps.Read}

	r.NotFound(h(func(http.ResponseWriter, *http.Request) error {
		return apierror.NotFound("Route not found")
	}))
	r.MethodNotAllowed(h(func(http.ResponseWriter, *http.Request) error {
		return apierror.New(http.StatusMethodNotAllowed, "Method not allowed")
	}))

	r.Get("/healthz", HealthHandler{}.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		userRoutes := func(r chi.Router) {
			r.With(throttled("register")).Post("/register", h(users.Register))
			r.With(throttled("login")).Post("/login", h(users.Login))
			r.With(throttled("refresh")).Post("/refresh-token", h(users.Refresh))

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Post("/logout", h(users.Logout))
				r.Post("/change-password", h(users.ChangePassword))
				r.Patch("/change-password", h(users.ChangePassword))
				r.Get("/current-user", h(users.CurrentUser))
				r.Patch("/update-account", h(users.UpdateAccount))
				r.Patch("/updated-account", h(users.UpdateAccount))
				r.Patch("/avatar", h(users.UpdateAvatar))
				r.Patch("/cover-image", h(users.UpdateCoverImage))
				r.Get("/c/{username}", h(users.ChannelProfile))
				r.Get("/history", h(users.WatchHistory))
				r.Post("/history", h(users.AddToHistory))
			})
		}
		r.Route("/users", userRoutes)
		r.Route("/user", userRoutes)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", h(videos.List))
				r.Post("/", h(videos.Publish))
				r.Get("/{videoId}", h(videos.Get))
				r.Patch("/{videoId}", h(videos.Update))
				r.Delete("/{videoId}", h(videos.Delete))
				r.Patch("/toggle/publish/{videoId}", h(videos.TogglePublish))
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{videoId}", h(comments.List))
				r.Post("/{videoId}", h(comments.Add))
				r.Patch("/c/{commentId}", h(comments.Update))
				r.Delete("/c/{commentId}", h(comments.Delete))
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", h(likes.ToggleVideo))
				r.Post("/toggle/c/{commentId}", h(likes.ToggleComment))
				r.Post("/toggle/t/{tweetId}", h(likes.ToggleTweet))
				r.Get("/videos", h(likes.LikedVideos))
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", h(subscriptions.Toggle))
				r.Get("/c/{channelId}", h(subscriptions.Subscribers))
				r.Get("/u/{subscriberId}", h(subscriptions.SubscribedChannels))
			})

			r.Route("/playlist", func(r chi.Router) {
				r.Post("/", h(playlists.Create))
				r.Get("/user/{userId}", h(playlists.ListByUser))
				r.Get("/{playlistId}", h(playlists.Get))
				r.Patch("/{playlistId}", h(playlists.Update))
				r.Delete("/{playlistId}", h(playlists.Delete))
				r.Patch("/add/{videoId}/{playlistId}", h(playlists.AddVideo))
				r.Patch("/remove/{videoId}/{playlistId}", h(playlists.RemoveVideo))
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", h(tweets.Create))
				r.Get("/user/{userId}", h(tweets.ListByUser))
				r.Patch("/{tweetId}", h(tweets.Update))
				r.Delete("/{tweetId}", h(tweets.Delete))
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", h(dashboard.Stats))
				r.Get("/videos", h(dashboard.Videos))
			})
		})
	})
}
