package types

import (
	"fmt"
	"net/url"
)

// Network identifies which ledger network the client talks to.
type Network string

const (
	NetworkTest   Network = "TEST"
	NetworkPublic Network = "PUBLIC"
)

// Well-known network passphrases. The passphrase is mixed into every
// transaction signature, so a transaction signed for one network is
// unusable on the other.
const (
	TestPassphrase   = "Test HackPredict Network ; October 2025"
	PublicPassphrase = "Public HackPredict Network ; October 2025"
)

// Default RPC endpoints per network. Overridable through configuration.
const (
	TestRPCEndpoint   = "https://rpc-testnet.hackpredict.io"
	PublicRPCEndpoint = "https://rpc.hackpredict.io"
)

// NetworkConfig holds the immutable per-process network parameters.
// Construct it once from configuration and pass it by value.
type NetworkConfig struct {
	Network     Network
	RPCEndpoint string
	Passphrase  string
}

// NewNetworkConfig builds a NetworkConfig for a known network. An empty
// rpcEndpoint selects the network's default endpoint.
func NewNetworkConfig(network Network, rpcEndpoint string) (NetworkConfig, error) {
	cfg := NetworkConfig{Network: network}

	switch network {
	case NetworkTest:
		cfg.Passphrase = TestPassphrase
		cfg.RPCEndpoint = TestRPCEndpoint
	case NetworkPublic:
		cfg.Passphrase = PublicPassphrase
		cfg.RPCEndpoint = PublicRPCEndpoint
	default:
		return NetworkConfig{}, fmt.Errorf("unknown network %q (want TEST or PUBLIC)", network)
	}

	if rpcEndpoint != "" {
		if _, err := url.ParseRequestURI(rpcEndpoint); err != nil {
			return NetworkConfig{}, fmt.Errorf("invalid rpc endpoint %q: %w", rpcEndpoint, err)
		}
		cfg.RPCEndpoint = rpcEndpoint
	}

	return cfg, nil
}
