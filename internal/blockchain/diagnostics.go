package blockchain

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const diagnosticCompetitionID = "diagnostics"

// DiagnosticResult holds the outcome of the derivation and storage self-test
type DiagnosticResult struct {
	ProgramID          string `json:"program_id"`
	Network            string `json:"network"`
	TestCompetitionPDA string `json:"test_competition_pda,omitempty"`
	TestVaultPDA       string `json:"test_vault_pda,omitempty"`
	TestVaultBump      uint8  `json:"test_vault_bump"`
	VaultSignerValid   bool   `json:"vault_signer_valid"`
	PDAError           string `json:"pda_error,omitempty"`
	DatabaseConnected  bool   `json:"database_connected"`
	DatabaseError      string `json:"database_error,omitempty"`
	ClusterChecked     bool   `json:"cluster_checked"`
	ClusterReachable   bool   `json:"cluster_reachable"`
	ClusterError       string `json:"cluster_error,omitempty"`
	Timestamp          string `json:"timestamp"`
}

// Healthy reports whether every check passed. The cluster is informational:
// the escrow ledger keeps working when the RPC node is down.
func (r *DiagnosticResult) Healthy() bool {
	return r.PDAError == "" && r.VaultSignerValid && r.DatabaseConnected
}

// DiagnosticProbes are the external dependencies checked by RunDiagnostics.
// A nil probe is skipped.
type DiagnosticProbes struct {
	Database func(context.Context) error
	Cluster  func(context.Context) error
}

// RunDiagnostics derives a test competition's addresses, checks that the
// re-derived vault signer authorizes its own vault, and runs the probes.
func (d *Deriver) RunDiagnostics(ctx context.Context, network string, probes DiagnosticProbes, log *zap.Logger) *DiagnosticResult {
	result := &DiagnosticResult{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ProgramID: d.programID.String(),
		Network:   network,
	}

	competition, _, err := d.CompetitionAddress(diagnosticCompetitionID)
	if err != nil {
		result.PDAError = err.Error()
		log.Warn("diagnostics: competition derivation failed", zap.Error(err))
	} else {
		result.TestCompetitionPDA = competition.String()
	}

	vault, signer, err := d.VaultSigner(diagnosticCompetitionID)
	if err != nil {
		result.PDAError = err.Error()
		log.Warn("diagnostics: vault derivation failed", zap.Error(err))
	} else {
		result.TestVaultPDA = vault.String()
		result.TestVaultBump = signer.Bump
		result.VaultSignerValid = signer.Authorizes(vault, d.programID)
	}

	if probes.Database != nil {
		if err := probes.Database(ctx); err != nil {
			result.DatabaseError = err.Error()
			log.Warn("diagnostics: database ping failed", zap.Error(err))
		} else {
			result.DatabaseConnected = true
		}
	}

	if probes.Cluster != nil {
		result.ClusterChecked = true
		if err := probes.Cluster(ctx); err != nil {
			result.ClusterError = err.Error()
			log.Warn("diagnostics: cluster unreachable", zap.Error(err))
		} else {
			result.ClusterReachable = true
		}
	}

	log.Debug("diagnostics finished",
		zap.Bool("healthy", result.Healthy()),
		zap.String("vault", result.TestVaultPDA))
	return result
}
