package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/models"
	"prediction-escrow/internal/repository"
	"prediction-escrow/internal/services"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type CompetitionHandler struct {
	competitionService *services.CompetitionService
	log                *zap.Logger
}

func NewCompetitionHandler(competitionService *services.CompetitionService, log *zap.Logger) *CompetitionHandler {
	return &CompetitionHandler{
		competitionService: competitionService,
		log:                log,
	}
}

// CreateCompetition funds a new competition from the caller's wallet
// POST /api/competitions
func (h *CompetitionHandler) CreateCompetition(c *gin.Context) {
	creator, ok := signer(c)
	if !ok {
		return
	}

	var req models.CreateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	competition, err := h.competitionService.Create(c.Request.Context(), creator, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewCompetitionResponse(competition))
}

// GetCompetitions lists competitions
// GET /api/competitions?creator=&participant=&state=&limit=&offset=
func (h *CompetitionHandler) GetCompetitions(c *gin.Context) {
	filter := repository.CompetitionFilter{
		Limit: defaultPageSize,
	}

	if creator := c.Query("creator"); creator != "" {
		pk, err := blockchain.ParseIdentity(creator)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		filter.Creator = pk.String()
	}
	if participant := c.Query("participant"); participant != "" {
		pk, err := blockchain.ParseIdentity(participant)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		filter.Participant = pk.String()
	}
	if state := c.Query("state"); state != "" {
		s, ok := models.ParseCompetitionState(state)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state filter"})
			return
		}
		filter.State = &s
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		if limit > maxPageSize {
			limit = maxPageSize
		}
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	competitions, err := h.competitionService.ListCompetitions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]models.CompetitionResponse, 0, len(competitions))
	for _, comp := range competitions {
		out = append(out, models.NewCompetitionResponse(comp))
	}
	c.JSON(http.StatusOK, gin.H{
		"competitions": out,
		"count":        len(out),
	})
}

// GetCompetition gets a competition by id
// GET /api/competitions/:id
func (h *CompetitionHandler) GetCompetition(c *gin.Context) {
	competition, err := h.competitionService.GetCompetition(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCompetitionResponse(competition))
}

// SubmitPrediction enters the caller into a competition
// POST /api/competitions/:id/predictions
func (h *CompetitionHandler) SubmitPrediction(c *gin.Context) {
	user, ok := signer(c)
	if !ok {
		return
	}

	var req models.SubmitPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.competitionService.SubmitPrediction(c.Request.Context(), user, c.Param("id"), req.Guess)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewPredictionResponse(prediction))
}

// GetPredictions lists a competition's predictions
// GET /api/competitions/:id/predictions
func (h *CompetitionHandler) GetPredictions(c *gin.Context) {
	predictions, err := h.competitionService.GetPredictions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]models.PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, models.NewPredictionResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"predictions": out,
		"count":       len(out),
	})
}

// GetMyPrediction reports whether the caller joined a competition
// GET /api/competitions/:id/predictions/me
func (h *CompetitionHandler) GetMyPrediction(c *gin.Context) {
	user, ok := signer(c)
	if !ok {
		return
	}

	prediction, joined, err := h.competitionService.GetUserPrediction(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !joined {
		c.JSON(http.StatusOK, gin.H{"joined": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"joined":     true,
		"prediction": models.NewPredictionResponse(prediction),
	})
}

// ResolveCompetition pays the winner; creator only
// POST /api/competitions/:id/resolve
func (h *CompetitionHandler) ResolveCompetition(c *gin.Context) {
	caller, ok := signer(c)
	if !ok {
		return
	}

	var req models.ResolveCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	winner, err := blockchain.ParseIdentity(req.Winner)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	competition, err := h.competitionService.Resolve(c.Request.Context(), caller, c.Param("id"), winner, req.Payout)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.NewCompetitionResponse(competition))
}

// GetVault describes the competition's escrow account
// GET /api/competitions/:id/vault
func (h *CompetitionHandler) GetVault(c *gin.Context) {
	vault, err := h.competitionService.GetVault(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, vault)
}
