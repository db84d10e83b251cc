package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"prediction-escrow/internal/auth"
	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/repository"
	"prediction-escrow/internal/services"
)

// LoginMessage is the text a wallet signs to log in, followed by the
// timestamp line from LoginMessageAt.
const LoginMessage = "Sign this message to authenticate with prediction-escrow"

// loginWindow bounds the age of a signed login timestamp.
const loginWindow = 5 * time.Minute

// LoginMessageAt is the exact message signed for a login at unix second ts.
func LoginMessageAt(ts int64) string {
	return fmt.Sprintf("%s\nTimestamp: %d", LoginMessage, ts)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// WalletLogin authenticates a wallet by its signature over LoginMessageAt.
// The timestamp must be recent and newer than the wallet's previous login.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		Timestamp     int64  `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pubKey, err := blockchain.ParseIdentity(req.WalletAddress)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// wallets return base58; some clients send hex
	sig, err := base58.Decode(req.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		sig, err = hex.DecodeString(req.Signature)
		if err != nil || len(sig) != ed25519.SignatureSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature format"})
			return
		}
	}

	signedAt := time.Unix(req.Timestamp, 0)
	if age := time.Since(signedAt); age > loginWindow || age < -loginWindow {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login message expired"})
		return
	}

	if !ed25519.Verify(pubKey[:], []byte(LoginMessageAt(req.Timestamp)), sig) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	user, err := h.authService.ProcessWalletLogin(c.Request.Context(), pubKey.String(), req.Timestamp)
	if errors.Is(err, repository.ErrStaleLogin) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login signature already used"})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.WalletAddress)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout handles user logout (stateless JWT, client-side only)
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// GetMe returns the currently authenticated user's profile
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
