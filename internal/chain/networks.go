package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
)

// CAIP-2 network identifiers
const (
	NetworkBase      = "eip155:8453"
	NetworkPolygon   = "eip155:137"
	NetworkAvalanche = "eip155:43114"
	NetworkEthereum  = "eip155:1"

	NetworkBaseSepolia   = "eip155:84532"
	NetworkPolygonAmoy   = "eip155:80002"
	NetworkAvalancheFuji = "eip155:43113"
	NetworkSepolia       = "eip155:11155111"
)

// Network describes an EVM chain and the stablecoin accepted on it.
type Network struct {
	// ID is the CAIP-2 network identifier.
	ID      string
	Name    string
	ChainID int64
	// InfuraRPCID is the Infura subdomain used to build the default RPC URL.
	InfuraRPCID string

	TokenSymbol   string
	TokenAddress  string
	TokenDecimals uint8
}

// USDC addresses verified against Circle's published deployments.
var knownNetworks = map[string]Network{
	NetworkBase: {
		ID: NetworkBase, Name: "Base", ChainID: 8453, InfuraRPCID: "base-mainnet",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", TokenDecimals: 6,
	},
	NetworkPolygon: {
		ID: NetworkPolygon, Name: "Polygon", ChainID: 137, InfuraRPCID: "polygon-mainnet",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", TokenDecimals: 6,
	},
	NetworkAvalanche: {
		ID: NetworkAvalanche, Name: "Avalanche C-Chain", ChainID: 43114, InfuraRPCID: "avalanche-mainnet",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", TokenDecimals: 6,
	},
	NetworkEthereum: {
		ID: NetworkEthereum, Name: "Ethereum", ChainID: 1, InfuraRPCID: "mainnet",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", TokenDecimals: 6,
	},
	NetworkBaseSepolia: {
		ID: NetworkBaseSepolia, Name: "Base Sepolia", ChainID: 84532, InfuraRPCID: "base-sepolia",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0x036CbD53842c5426634e7929541eC2318f3dCF7e", TokenDecimals: 6,
	},
	NetworkPolygonAmoy: {
		ID: NetworkPolygonAmoy, Name: "Polygon Amoy", ChainID: 80002, InfuraRPCID: "polygon-amoy",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582", TokenDecimals: 6,
	},
	NetworkAvalancheFuji: {
		ID: NetworkAvalancheFuji, Name: "Avalanche Fuji", ChainID: 43113, InfuraRPCID: "avalanche-fuji",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0x5425890298aed601595a70AB815c96711a31Bc65", TokenDecimals: 6,
	},
	NetworkSepolia: {
		ID: NetworkSepolia, Name: "Sepolia", ChainID: 11155111, InfuraRPCID: "sepolia",
		TokenSymbol: constants.USDCCurrency, TokenAddress: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", TokenDecimals: 6,
	},
}

// Lookup returns the built-in configuration for a CAIP-2 network id.
func Lookup(id string) (Network, bool) {
	n, ok := knownNetworks[strings.TrimSpace(id)]
	return n, ok
}

// TokenUnitsForMinor converts an amount in minor currency units (cents) to token
// base units. Stablecoins are assumed pegged 1:1 to the currency.
func (n Network) TokenUnitsForMinor(minor int64) *big.Int {
	amount := big.NewInt(minor)
	if n.TokenDecimals >= 2 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.TokenDecimals-2)), nil)
		return amount.Mul(amount, scale)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(2-n.TokenDecimals)), nil)
	return amount.Quo(amount, scale)
}

// Registry is the set of networks this deployment accepts payments on, in
// configuration order.
type Registry struct {
	networks map[string]Network
	order    []string
}

// NewRegistry builds a registry from CAIP-2 ids. Unknown ids are an error.
func NewRegistry(ids []string) (*Registry, error) {
	r := &Registry{networks: make(map[string]Network)}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		n, ok := Lookup(id)
		if !ok {
			return nil, fmt.Errorf("unknown network %q", id)
		}
		if _, dup := r.networks[id]; dup {
			continue
		}
		r.networks[id] = n
		r.order = append(r.order, id)
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("no supported networks configured")
	}
	return r, nil
}

// NewRegistryFromNetworks builds a registry from explicit network definitions.
// Used for private deployments and tests.
func NewRegistryFromNetworks(networks ...Network) *Registry {
	r := &Registry{networks: make(map[string]Network)}
	for _, n := range networks {
		if _, dup := r.networks[n.ID]; dup {
			continue
		}
		r.networks[n.ID] = n
		r.order = append(r.order, n.ID)
	}
	return r
}

// Get returns the network with the given id if it is supported.
func (r *Registry) Get(id string) (Network, bool) {
	n, ok := r.networks[id]
	return n, ok
}

// List returns supported networks in configuration order.
func (r *Registry) List() []Network {
	out := make([]Network, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.networks[id])
	}
	return out
}
