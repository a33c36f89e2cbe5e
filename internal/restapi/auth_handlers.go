package restapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

type registerRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name,omitempty"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

// handleRegister implements POST /api/auth/register (spec.md §6): a new
// user lands in status=pending and cannot log in until an admin approves
// it (§4.8 approve-user workflow).
func (d *Deps) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}
	if req.Email == "" || req.Password == "" {
		return writeError(c, errInvalidBody("email and password are required"))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return writeError(c, err)
	}

	user := store.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Tier:         store.TierStarter,
		Status:       store.UserStatusPending,
		Role:         store.RoleUser,
		TenantID:     d.DefaultTenant,
		CreatedAt:    time.Now(),
		LastActive:   time.Now(),
		AuthProvider: store.AuthProviderEmail,
	}

	id, err := d.Store.CreateUser(c.Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(registerResponse{UserID: id})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	JWTToken  string     `json:"jwt_token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      store.User `json:"user"`
}

// handleLogin implements POST /api/auth/login (spec.md §6). A pending or
// suspended user (User.CanLogIn false) is rejected even with a correct
// password.
func (d *Deps) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}

	user, err := d.Store.GetUserByEmail(c.Context(), req.Email)
	if err != nil {
		return writeError(c, errInvalidCredentials())
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return writeError(c, errInvalidCredentials())
	}
	if !user.CanLogIn() {
		return writeError(c, auth.ErrUserSuspended())
	}

	token, err := d.JWT.GenerateAccessToken(user.ID, user.TenantID, user.Tier, nil)
	if err != nil {
		return writeError(c, err)
	}

	user.LastActive = time.Now()
	_ = d.Store.UpdateUser(c.Context(), *user)

	return c.JSON(loginResponse{
		JWTToken:  token,
		ExpiresAt: time.Now().Add(d.accessTokenTTL()),
		User:      *user,
	})
}

type refreshRequest struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type refreshResponse struct {
	JWTToken  string    `json:"jwt_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleRefresh implements POST /api/auth/refresh (spec.md §6): mints a
// fresh access token from one that is valid or only recently expired, for
// the user_id it was issued to.
func (d *Deps) handleRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}

	claims, err := d.JWT.ValidateForRefresh(req.Token, d.RefreshWindow)
	if err != nil {
		return writeError(c, err)
	}
	if claims.UserID != req.UserID {
		return writeError(c, auth.ErrTokenInvalid())
	}

	user, err := d.Store.GetUserByID(c.Context(), req.UserID)
	if err != nil {
		return writeError(c, err)
	}
	if !user.CanLogIn() {
		return writeError(c, auth.ErrUserSuspended())
	}

	token, err := d.JWT.GenerateAccessToken(user.ID, user.TenantID, user.Tier, nil)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(refreshResponse{JWTToken: token, ExpiresAt: time.Now().Add(d.accessTokenTTL())})
}

func (d *Deps) accessTokenTTL() time.Duration {
	return d.JWT.TTL()
}
