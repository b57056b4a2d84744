package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/models"
	"github.com/vidhub/backend/internal/repositories"
)

const minPasswordLength = 6

// UserHandler serves registration, sessions and account management.
type UserHandler struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Read          ReadModel
	Media         MediaHost
	Janitor       MediaJanitor
	Uploads       UploadConfig
	SecureCookies bool
}

// Register implements POST /users/register.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) error {
	upload, err := parseUpload(w, r, h.Uploads, "avatar", "coverImage")
	if err != nil {
		return err
	}
	defer upload.Cleanup()

	fullname := upload.Value("fullname")
	email := strings.ToLower(upload.Value("email"))
	username := strings.ToLower(upload.Value("username"))
	password := upload.Value("password")
	if fullname == "" || email == "" || username == "" || password == "" {
		return apierror.BadRequest("All fields are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apierror.BadRequest("Invalid email address")
	}

	exists, err := h.Users.Exists(r.Context(), username, email)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	if exists {
		return apierror.Conflict("User with email or username already exists")
	}

	avatarPath := upload.File("avatar")
	if avatarPath == "" {
		return apierror.BadRequest("Avatar is required")
	}
	avatar, err := uploadFile(r, h.Media, avatarPath)
	if err != nil {
		return err
	}
	var cover string
	if coverPath := upload.File("coverImage"); coverPath != "" {
		asset, err := uploadFile(r, h.Media, coverPath)
		if err != nil {
			discard(r, h.Janitor, avatar.URL)
			return err
		}
		cover = asset.URL
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apierror.Internal("Something went wrong while registering the user", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		Fullname:   fullname,
		Avatar:     avatar.URL,
		CoverImage: cover,
		Password:   string(hash),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return apierror.Conflict("User with email or username already exists").Wrap(err)
		}
		return apierror.Internal("Something went wrong while registering the user", err)
	}

	created, err := h.Users.FindByID(r.Context(), user.ID)
	if err != nil {
		return apierror.Internal("Something went wrong while registering the user", err)
	}
	logger(r).Info("user registered", "user_id", created.ID)
	respondJSON(r.Context(), w, http.StatusCreated, "User registered successfully", created)
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Login implements POST /users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" && email == "" {
		return apierror.BadRequest("username or email is required")
	}

	user, err := h.Users.FindByLogin(r.Context(), username, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierror.Unauthorized("Invalid username or password").Wrap(err)
		}
		return apierror.Internal("Internal Server Error", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apierror.Unauthorized("Invalid username or password")
	}

	tokens, err := h.Sessions.Issue(r.Context(), user.ID)
	if err != nil {
		return apierror.Internal("Something went wrong while generating tokens", err)
	}
	setSessionCookies(w, tokens, h.SecureCookies)

	user.Password = ""
	user.RefreshToken = ""
	respondJSON(r.Context(), w, http.StatusOK, "User logged in successfully", loginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
	return nil
}

// Logout implements POST /users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.Sessions.Revoke(r.Context(), user.ID); err != nil && !errors.Is(err, auth.ErrUnknownUser) {
		return apierror.Internal("Internal Server Error", err)
	}
	clearSessionCookies(w, h.SecureCookies)
	respondJSON(r.Context(), w, http.StatusOK, "User logged out", empty{})
	return nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh implements POST /users/refresh-token.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	var token string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		token = strings.TrimSpace(cookie.Value)
	}
	if token == "" {
		var req refreshRequest
		if err := decodeJSON(w, r, &req, true); err != nil {
			return err
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		return apierror.Unauthorized("Unauthorized request")
	}

	tokens, err := h.Sessions.Rotate(r.Context(), token)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrRefreshTokenReused):
		return apierror.Unauthorized("Refresh token is expired or used").Wrap(err)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrUnknownUser):
		return apierror.Unauthorized("Invalid refresh token").Wrap(err)
	default:
		return apierror.Internal("Internal Server Error", err)
	}

	setSessionCookies(w, tokens, h.SecureCookies)
	respondJSON(r.Context(), w, http.StatusOK, "Access token refreshed", tokens)
	return nil
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword implements POST /users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return apierror.BadRequest("oldPassword and newPassword are required")
	}

	// The context user has its credentials stripped; reload the stored hash.
	user, err := h.Users.FindByID(r.Context(), actor.ID)
	if err != nil {
		return storeError(err, "User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apierror.BadRequest("Invalid old password")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apierror.BadRequest("Password must be at least 6 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	if err := h.Users.UpdatePassword(r.Context(), user.ID, string(hash)); err != nil {
		return storeError(err, "User not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Password changed successfully", empty{})
	return nil
}

// CurrentUser implements GET /users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}
	respondJSON(r.Context(), w, http.StatusOK, "Current user fetched successfully", user)
	return nil
}

type updateAccountRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// UpdateAccount implements PATCH /users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	fullname := strings.TrimSpace(req.Fullname)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if fullname == "" || email == "" {
		return apierror.BadRequest("All fields are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apierror.BadRequest("Invalid email address")
	}

	user, err := h.Users.UpdateAccount(r.Context(), actor.ID, fullname, email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return apierror.Conflict("Email is already in use").Wrap(err)
		}
		return storeError(err, "User not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Account details updated successfully", user)
	return nil
}

// UpdateAvatar implements PATCH /users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "avatar", "Avatar", h.Users.UpdateAvatar, func(u models.User) string { return u.Avatar })
}

// UpdateCoverImage implements PATCH /users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "coverImage", "Cover image", h.Users.UpdateCoverImage, func(u models.User) string { return u.CoverImage })
}

type imageUpdater func(ctx context.Context, id, url string) (models.User, error)

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field, label string, update imageUpdater, previous func(models.User) string) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	upload, err := parseUpload(w, r, h.Uploads, field)
	if err != nil {
		return err
	}
	defer upload.Cleanup()

	path := upload.File(field)
	if path == "" {
		return apierror.BadRequest(label + " file is missing")
	}
	asset, err := uploadFile(r, h.Media, path)
	if err != nil {
		return err
	}

	user, err := update(r.Context(), actor.ID, asset.URL)
	if err != nil {
		discard(r, h.Janitor, asset.URL)
		return storeError(err, "User not found")
	}
	if old := previous(actor); old != "" && old != asset.URL {
		discard(r, h.Janitor, old)
	}
	respondJSON(r.Context(), w, http.StatusOK, label+" updated successfully", user)
	return nil
}

// ChannelProfile implements GET /users/c/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	username := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "username")))
	if username == "" {
		return apierror.BadRequest("username is missing")
	}

	profile, err := h.Read.ChannelProfile(r.Context(), username, actor.ID)
	if err != nil {
		return storeError(err, "Channel does not exist")
	}
	respondJSON(r.Context(), w, http.StatusOK, "User channel fetched successfully", profile)
	return nil
}

// WatchHistory implements GET /users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	history, err := h.Read.WatchHistory(r.Context(), actor.ID)
	if err != nil {
		return storeError(err, "User not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Watch history fetched successfully", history)
	return nil
}

type historyRequest struct {
	VideoID string `json:"videoId"`
}

// AddToHistory implements POST /users/history.
func (h UserHandler) AddToHistory(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	var req historyRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	videoID, err := parseID(req.VideoID, "videoId")
	if err != nil {
		return err
	}
	if err := h.Videos.RecordView(r.Context(), actor.ID, videoID); err != nil {
		return storeError(err, "Video not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Video added to watch history", empty{})
	return nil
}
