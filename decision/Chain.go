package decision

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/golang/glog"

	"github.com/samuelfneumann/tabular/errs"
)

// ChainConfig configures a Chain decider
type ChainConfig struct {
	RPCURL  string `json:"rpc_url" yaml:"rpc_url"`
	Address string `json:"address" yaml:"address"`
}

// BalanceReader reads account balances in wei. It is satisfied by
// *ethclient.Client.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address,
		blockNumber *big.Int) (*big.Int, error)
}

// Chain scores every input by the latest balance of an account in
// ether
type Chain struct {
	reader  BalanceReader
	account common.Address
}

// NewChain returns a Chain which reads the balance of address with
// reader
func NewChain(reader BalanceReader, address string) (*Chain, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return nil, errs.New(errs.InvalidConfiguration,
			"newChain: invalid account address %q", address)
	}
	return &Chain{reader: reader, account: common.HexToAddress(address)}, nil
}

// DialChain connects to the JSON-RPC endpoint in cfg and returns a
// Chain using it
func DialChain(ctx context.Context, cfg ChainConfig) (*Chain, error) {
	url := strings.TrimSpace(cfg.RPCURL)
	if url == "" {
		return nil, errs.New(errs.InvalidConfiguration,
			"dialChain: rpc url must be set")
	}
	if !common.IsHexAddress(strings.TrimSpace(cfg.Address)) {
		return nil, errs.New(errs.InvalidConfiguration,
			"dialChain: invalid account address %q", cfg.Address)
	}

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errs.Wrap(errs.Upstream, err, "dialChain: could not "+
			"connect to %v", url)
	}
	return NewChain(client, cfg.Address)
}

// Decide implements the Decider interface. The input is ignored.
func (c *Chain) Decide(ctx context.Context, _ []float64) (float64, error) {
	wei, err := c.reader.BalanceAt(ctx, c.account, nil)
	if err != nil {
		return 0, errs.Wrap(errs.Upstream, err, "decide: could not read "+
			"balance of %v", c.account.Hex())
	}

	ether := WeiToEther(wei)
	glog.V(2).Infof("balance of %v: %v ether", c.account.Hex(), ether)
	return ether, nil
}

// Close closes the underlying client, if it can be closed
func (c *Chain) Close() {
	if closer, ok := c.reader.(interface{ Close() }); ok {
		closer.Close()
	}
}

// WeiToEther converts an amount in wei to ether
func WeiToEther(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	ether := new(big.Float).Quo(new(big.Float).SetInt(wei),
		big.NewFloat(params.Ether))
	f, _ := ether.Float64()
	return f
}
