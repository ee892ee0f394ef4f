// Package handlers implements the HTTP handlers: the auth flows and the
// CRUD + list endpoints for the directory resources.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"camphub/internal/config"
	"camphub/internal/managers"
	"camphub/internal/schemas"
	"camphub/internal/stores"
	"camphub/internal/utils"
)

// resetTokenTTL is the lifetime of a password-reset token.
const resetTokenTTL = 10 * time.Minute

type AuthHdl interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	GetMe(c *gin.Context)
	UpdateDetails(c *gin.Context)
	UpdatePassword(c *gin.Context)
	ForgotPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
}

type AuthHandler struct {
	Config      *config.Config
	JWTManager  managers.JWTMgr
	MailManager managers.MailMgr
	Users       *stores.UserStore
	Validator   *utils.Validator
}

func NewAuthHandler(cfg *config.Config, databaseMgr managers.DatabaseMgr, jwtMgr managers.JWTMgr, mailMgr managers.MailMgr) AuthHdl {
	return &AuthHandler{
		Config:      cfg,
		JWTManager:  jwtMgr,
		MailManager: mailMgr,
		Users:       stores.NewUserStore(databaseMgr.GetPool()),
		Validator:   utils.GetValidator(),
	}
}

// Register creates a new account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	payload := utils.GetPayload[schemas.RegisterRequest](c)

	if h.Config.IsProduction() && !h.Validator.VerifyEmail(payload.Email) {
		utils.AbortWithError(c, schemas.ErrEmailUnreachable)
		return
	}

	hashed, err := stores.HashPassword(payload.Password)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	role := payload.Role
	if role == "" {
		role = schemas.RoleUser
	}

	account := &schemas.Account{
		ID:        uuid.New(),
		Name:      payload.Name,
		Email:     payload.Email,
		Role:      role,
		Password:  hashed,
		CreatedAt: time.Now().UTC(),
	}

	// A duplicate email surfaces as a unique violation and is mapped by
	// the error normalizer.
	if err := h.Users.Create(c.Request.Context(), account); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	h.sendTokenResponse(c, account.ID, http.StatusCreated)
}

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password produce identical responses.
func (h *AuthHandler) Login(c *gin.Context) {
	payload := utils.GetPayload[schemas.LoginRequest](c)

	account, err := h.Users.FindByEmail(c.Request.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.ErrInvalidCredentials)
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	if !stores.ComparePassword(account.Password, payload.Password) {
		utils.AbortWithError(c, schemas.ErrInvalidCredentials)
		return
	}

	h.sendTokenResponse(c, account.ID, http.StatusOK)
}

// GetMe returns the principal the access guard resolved.
func (h *AuthHandler) GetMe(c *gin.Context) {
	principal := utils.GetPrincipal(c)
	utils.WriteAndLogResponse(c, schemas.NewDataResponse(principal), http.StatusOK)
}

// UpdateDetails updates the whitelisted profile fields of the principal.
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	payload := utils.GetPayload[schemas.UpdateDetailsRequest](c)
	principal := utils.GetPrincipal(c)

	updated, err := h.Users.UpdateDetails(c.Request.Context(), principal.ID, payload.Name, payload.Email)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(updated), http.StatusOK)
}

// UpdatePassword changes the principal's password after verifying the
// current one, then issues a fresh session token.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	payload := utils.GetPayload[schemas.UpdatePasswordRequest](c)
	principal := utils.GetPrincipal(c)

	account, err := h.Users.FindByID(c.Request.Context(), principal.ID)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if !stores.ComparePassword(account.Password, payload.CurrentPassword) {
		utils.AbortWithError(c, schemas.ErrPasswordIncorrect)
		return
	}

	hashed, err := stores.HashPassword(payload.NewPassword)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if err := h.Users.UpdatePassword(c.Request.Context(), principal.ID, hashed); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	h.sendTokenResponse(c, principal.ID, http.StatusOK)
}

// ForgotPassword generates a reset secret, persists its hash with a
// 10-minute expiry and mails the plaintext link. A failed delivery clears
// the persisted fields again before reporting the failure.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	payload := utils.GetPayload[schemas.ForgotPasswordRequest](c)

	account, err := h.Users.FindByEmail(c.Request.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.ErrNoUserWithEmail)
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	plaintext, hash, err := h.JWTManager.GenerateResetSecret()
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	expire := time.Now().UTC().Add(resetTokenTTL)
	if err := h.Users.SetResetToken(c.Request.Context(), account.ID, hash, expire); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	resetURL := h.resetURL(c, plaintext)
	if err := h.MailManager.SendPasswordResetMail(account.Email, account.Name, resetURL); err != nil {
		utils.LogMessageWithFieldsAndError(c, "error", "Error sending password reset mail", err)
		if clearErr := h.Users.ClearResetToken(c.Request.Context(), account.ID); clearErr != nil {
			utils.LogMessageWithFieldsAndError(c, "error", "Error clearing reset token after failed delivery", clearErr)
		}
		utils.AbortWithError(c, schemas.ErrEmailNotSent)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse("Email sent"), http.StatusOK)
}

// ResetPassword consumes a reset token presented in the path. An unknown
// hash and an expired token fail identically.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	payload := utils.GetPayload[schemas.ResetPasswordRequest](c)
	hash := h.JWTManager.HashResetSecret(c.Param("token"))

	account, err := h.Users.FindByResetHash(c.Request.Context(), hash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.ErrInvalidResetToken)
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	hashed, err := stores.HashPassword(payload.Password)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if err := h.Users.ResetPassword(c.Request.Context(), account.ID, hashed); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	h.sendTokenResponse(c, account.ID, http.StatusOK)
}

// sendTokenResponse issues a session token and returns it both in the body
// and as an httpOnly cookie, secure in production.
func (h *AuthHandler) sendTokenResponse(c *gin.Context, id uuid.UUID, status int) {
	token, err := h.JWTManager.GenerateJWT(id.String(), h.Config.JWTExpire)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	maxAge := h.Config.CookieExpire * 24 * 60 * 60
	c.SetCookie("token", token, maxAge, "/", "", h.Config.IsProduction(), true)

	utils.WriteAndLogResponse(c, &schemas.TokenResponse{Success: true, Token: token}, status)
}

func (h *AuthHandler) resetURL(c *gin.Context, plaintext string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", scheme, c.Request.Host, plaintext)
}
