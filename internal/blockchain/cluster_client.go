package blockchain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// ClusterClient talks to a Solana RPC node. The escrow ledger does not settle
// on chain; the client only reports whether the configured cluster is up.
type ClusterClient struct {
	rpcClient *rpc.Client
	endpoint  string
}

// RPCEndpoint returns the public endpoint of a named network.
func RPCEndpoint(network string) string {
	switch network {
	case "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "localnet":
		return "http://127.0.0.1:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}

// NewClusterClient creates a client for endpoint, or for network when
// endpoint is empty.
func NewClusterClient(network, endpoint string) *ClusterClient {
	if endpoint == "" {
		endpoint = RPCEndpoint(network)
	}
	return &ClusterClient{
		rpcClient: rpc.New(endpoint),
		endpoint:  endpoint,
	}
}

func (c *ClusterClient) Endpoint() string {
	return c.endpoint
}

// Ping asks the node for its health.
func (c *ClusterClient) Ping(ctx context.Context) error {
	status, err := c.rpcClient.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("rpc health: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("rpc health: %s", status)
	}
	return nil
}
