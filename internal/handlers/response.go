package handlers

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prediction-escrow/internal/auth"
	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/errcode"
)

// statusFor maps an error code group to an HTTP status.
func statusFor(code errcode.Code) int {
	switch code.Group() {
	case errcode.GroupValidation:
		return http.StatusBadRequest
	case errcode.GroupState, errcode.GroupConflict:
		return http.StatusConflict
	case errcode.GroupAuthorization:
		return http.StatusForbidden
	case errcode.GroupFunds:
		return http.StatusUnprocessableEntity
	case errcode.GroupNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error", "code"}. Errors without a code are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if code, ok := errcode.CodeOf(err); ok {
		c.JSON(statusFor(code), gin.H{
			"error": code.Message(),
			"code":  code.String(),
		})
		return
	}

	log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// signer returns the wallet the caller authenticated as.
func signer(c *gin.Context) (solana.PublicKey, bool) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return solana.PublicKey{}, false
	}
	pk, err := blockchain.ParseIdentity(wallet)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return solana.PublicKey{}, false
	}
	return pk, true
}
