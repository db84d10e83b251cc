package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/models"
	"prediction-escrow/internal/services"
)

type AccountHandler struct {
	competitionService *services.CompetitionService
	enableAirdrop      bool
	log                *zap.Logger
}

func NewAccountHandler(competitionService *services.CompetitionService, enableAirdrop bool, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		competitionService: competitionService,
		enableAirdrop:      enableAirdrop,
		log:                log,
	}
}

// GetBalance reads a ledger account
// GET /api/accounts/:address/balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	address, err := blockchain.ParseIdentity(c.Param("address"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	balance, err := h.competitionService.GetBalance(c.Request.Context(), address)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// Airdrop funds a wallet on development networks
// POST /api/dev/airdrop
func (h *AccountHandler) Airdrop(c *gin.Context) {
	if !h.enableAirdrop {
		c.JSON(http.StatusNotFound, gin.H{"error": "airdrop disabled"})
		return
	}

	caller, ok := signer(c)
	if !ok {
		return
	}

	var req models.AirdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	to := caller
	if req.Address != "" {
		pk, err := blockchain.ParseIdentity(req.Address)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		to = pk
	}

	balance, err := h.competitionService.Airdrop(c.Request.Context(), to, req.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}
