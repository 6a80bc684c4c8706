package repository

import (
	"web3-risk/internal/analyzer/gateway/chain"
	"web3-risk/internal/analyzer/gateway/market"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
)

type Repository interface {
	GetMainRDB() *redis.Client
	GetEvmClient() *ethclient.Client
	GetChainClient() *chain.Client
	GetMarketClient() *market.Client
	Close() error
}
