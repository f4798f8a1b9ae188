package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"credocarbon/config"
	"credocarbon/crypto"
	"credocarbon/metrics"
	"credocarbon/utils"
)

// AuthHandler handles admin authentication requests
type AuthHandler struct {
	config *config.Config
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

// LoginRequest represents an admin login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// Login godoc
// @Summary Admin login
// @Description Authenticate with the configured admin credentials and receive a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse "Issued token"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.config.AdminUsername)) == 1
	passwordOK := crypto.VerifyCredential(req.Password, h.config.AdminPassword)
	if !usernameOK || !passwordOK {
		metrics.IncrementLoginAttempt("failure")
		utils.LogRequestError(c, "LOGIN_FAILED", fiber.ErrUnauthorized, "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
	}

	expiresAt := time.Now().Add(h.config.TokenTTL)
	claims := jwt.MapClaims{
		"sub": h.config.AdminUsername,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.config.JWTSecret)
	if err != nil {
		utils.LogRequestError(c, "TOKEN_SIGNING", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
	}

	metrics.IncrementLoginAttempt("success")
	return c.JSON(LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	})
}

// Me godoc
// @Summary Current principal
// @Description Return the authenticated admin identity
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Authenticated principal"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)
	if username == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.JSON(fiber.Map{"username": username})
}
