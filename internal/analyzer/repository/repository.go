package repository

import (
	"context"
	"sync"
	"time"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/gateway/chain"
	"web3-risk/internal/analyzer/gateway/market"
	"web3-risk/pkg/evm_client"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var once sync.Once
var r *repositoryImpl

func New(cfg config.Config, logger *zap.Logger) Repository {
	once.Do(func() {
		r = &repositoryImpl{
			cfg:    cfg,
			logger: logger,
		}
		r.init()
	})
	return r
}

type repositoryImpl struct {
	cfg          config.Config
	logger       *zap.Logger
	mainRdb      *redis.Client
	evmClient    *ethclient.Client
	chainClient  *chain.Client
	marketClient *market.Client
}

func (r *repositoryImpl) init() {
	// 初始化 Main RDB
	r.mainRdb = redis.NewClient(&redis.Options{
		Addr:     r.cfg.Redis.Address,
		Password: r.cfg.Redis.Password,
		DB:       r.cfg.Redis.DB,
		PoolSize: 20,
	})

	if err := r.mainRdb.Ping(context.Background()).Err(); err != nil {
		r.logger.Warn("failed to connect to redis, continue", zap.Error(err))
	}

	// 初始化rpc client
	r.evmClient = evm_client.Init(r.cfg.EvmClientRawUrl, time.Duration(r.cfg.EvmClientTimeoutSec)*time.Second)
	r.chainClient = chain.NewClient(r.evmClient, r.logger)
	r.marketClient = market.NewClient(r.cfg.Market, r.logger)
}

func (r *repositoryImpl) GetMainRDB() *redis.Client {
	return r.mainRdb
}

func (r *repositoryImpl) GetEvmClient() *ethclient.Client {
	return r.evmClient
}

func (r *repositoryImpl) GetChainClient() *chain.Client {
	return r.chainClient
}

func (r *repositoryImpl) GetMarketClient() *market.Client {
	return r.marketClient
}

func (r *repositoryImpl) Close() error {
	if r.mainRdb != nil {
		r.mainRdb.Close()
	}
	if r.evmClient != nil {
		r.evmClient.Close()
	}
	return nil
}
