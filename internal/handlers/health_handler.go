package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prediction-escrow/internal/blockchain"
)

type HealthHandler struct {
	deriver *blockchain.Deriver
	network string
	probes  blockchain.DiagnosticProbes
	log     *zap.Logger
}

func NewHealthHandler(deriver *blockchain.Deriver, network string, probes blockchain.DiagnosticProbes, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		deriver: deriver,
		network: network,
		probes:  probes,
		log:     log,
	}
}

// Health is a liveness probe
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Diagnostics runs the derivation and storage self-test
// GET /health/diagnostics
func (h *HealthHandler) Diagnostics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result := h.deriver.RunDiagnostics(ctx, h.network, h.probes, h.log)
	status := http.StatusOK
	if !result.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
