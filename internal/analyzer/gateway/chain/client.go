package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"web3-risk/internal/analyzer/model"
	"web3-risk/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

var ErrNoContract = errors.New("no contract code at address")

var zeroAddress = common.Address{}

// Client 链上只读网关，所有方法都是无状态的 eth_call / eth_getCode
type Client struct {
	eth *ethclient.Client
	tl  *zap.Logger
}

func NewClient(eth *ethclient.Client, logger *zap.Logger) *Client {
	return &Client{eth: eth, tl: logger}
}

func (c *Client) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), ErrNoContract)
	}

	return parsed.Unpack(method, out)
}

// GetTokenMetadata 读取代币元数据。decimals/totalSupply 读不到视为代币不存在，
// owner() 读不到视为无 owner
func (c *Client) GetTokenMetadata(ctx context.Context, address string) (*model.TokenMetadata, error) {
	addr := common.HexToAddress(address)

	decOut, err := c.call(ctx, addr, erc20ABI, "decimals")
	if err != nil {
		return nil, err
	}
	decimals := decOut[0].(uint8)

	supplyOut, err := c.call(ctx, addr, erc20ABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	totalSupply := supplyOut[0].(*big.Int)

	meta := &model.TokenMetadata{
		Address:     utils.ChecksumAddress(address),
		Decimals:    decimals,
		TotalSupply: utils.AdjustDecimals(totalSupply, decimals),
	}

	if nameOut, err := c.call(ctx, addr, erc20ABI, "name"); err == nil {
		meta.Name = nameOut[0].(string)
	}
	if symbolOut, err := c.call(ctx, addr, erc20ABI, "symbol"); err == nil {
		meta.Symbol = symbolOut[0].(string)
	}

	if ownerOut, err := c.call(ctx, addr, erc20ABI, "owner"); err == nil {
		owner := ownerOut[0].(common.Address)
		if owner == zeroAddress || utils.SameAddress(owner.Hex(), DeadAddress) {
			meta.Renounced = true
		} else {
			hex := owner.Hex()
			meta.OwnerAddress = &hex
		}
	} else {
		// 无 owner() 方法，视为已放弃所有权
		meta.Renounced = true
	}

	return meta, nil
}

// DeadAddress 常见销毁地址
const DeadAddress = "0x000000000000000000000000000000000000dEaD"

// GetPairV2 查询 V2 工厂，不存在返回空串
func (c *Client) GetPairV2(ctx context.Context, factory, tokenA, tokenB string) (string, error) {
	out, err := c.call(ctx, common.HexToAddress(factory), factoryV2ABI, "getPair",
		common.HexToAddress(tokenA), common.HexToAddress(tokenB))
	if err != nil {
		return "", err
	}
	pair := out[0].(common.Address)
	if pair == zeroAddress {
		return "", nil
	}
	return pair.Hex(), nil
}

// GetPoolV3 查询 V3 工厂指定费率档位的池，不存在返回空串
func (c *Client) GetPoolV3(ctx context.Context, factory, tokenA, tokenB string, fee int64) (string, error) {
	out, err := c.call(ctx, common.HexToAddress(factory), factoryV3ABI, "getPool",
		common.HexToAddress(tokenA), common.HexToAddress(tokenB), big.NewInt(fee))
	if err != nil {
		return "", err
	}
	pool := out[0].(common.Address)
	if pool == zeroAddress {
		return "", nil
	}
	return pool.Hex(), nil
}

// GetPoolReserves 读取池两侧储备。V2 走 getReserves，V3 没有该方法，
// 退化为读池地址上两侧代币的 balanceOf
func (c *Client) GetPoolReserves(ctx context.Context, pool string) (*model.PoolReserves, error) {
	poolAddr := common.HexToAddress(pool)

	t0Out, err := c.call(ctx, poolAddr, poolABI, "token0")
	if err != nil {
		return nil, err
	}
	t1Out, err := c.call(ctx, poolAddr, poolABI, "token1")
	if err != nil {
		return nil, err
	}
	token0 := t0Out[0].(common.Address)
	token1 := t1Out[0].(common.Address)

	reserves := &model.PoolReserves{
		Token0: token0.Hex(),
		Token1: token1.Hex(),
	}

	if resOut, err := c.call(ctx, poolAddr, poolABI, "getReserves"); err == nil {
		reserves.Reserve0 = utils.AdjustDecimals(resOut[0].(*big.Int), 0)
		reserves.Reserve1 = utils.AdjustDecimals(resOut[1].(*big.Int), 0)
		return reserves, nil
	}

	r0, err := c.BalanceOf(ctx, token0.Hex(), pool)
	if err != nil {
		return nil, err
	}
	r1, err := c.BalanceOf(ctx, token1.Hex(), pool)
	if err != nil {
		return nil, err
	}
	reserves.Reserve0 = utils.AdjustDecimals(r0, 0)
	reserves.Reserve1 = utils.AdjustDecimals(r1, 0)
	return reserves, nil
}

// IsPoolLike 判断地址是否暴露池形态的只读方法（用于从持有人里找出未注册的池）
func (c *Client) IsPoolLike(ctx context.Context, address string) bool {
	out, err := c.call(ctx, common.HexToAddress(address), poolABI, "token0")
	if err != nil {
		return false
	}
	return out[0].(common.Address) != zeroAddress
}

func (c *Client) BalanceOf(ctx context.Context, token, holder string) (*big.Int, error) {
	out, err := c.call(ctx, common.HexToAddress(token), erc20ABI, "balanceOf", common.HexToAddress(holder))
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *Client) TotalSupply(ctx context.Context, token string) (*big.Int, error) {
	out, err := c.call(ctx, common.HexToAddress(token), erc20ABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *Client) Decimals(ctx context.Context, token string) (uint8, error) {
	out, err := c.call(ctx, common.HexToAddress(token), erc20ABI, "decimals")
	if err != nil {
		return 0, err
	}
	return out[0].(uint8), nil
}

// GetContractBytecode 读取已部署字节码
func (c *Client) GetContractBytecode(ctx context.Context, address string) ([]byte, error) {
	code, err := c.eth.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, err
	}
	return code, nil
}
