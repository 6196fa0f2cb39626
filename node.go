package p2pnode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-p2pnode/internal/core/metrics"
	"github.com/dep2p/go-p2pnode/internal/core/muxer"
	"github.com/dep2p/go-p2pnode/internal/core/negotiation"
	"github.com/dep2p/go-p2pnode/internal/core/security/noise"
	"github.com/dep2p/go-p2pnode/internal/core/security/verifier"
	"github.com/dep2p/go-p2pnode/internal/core/upgrader"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

var logger = log.Logger("p2pnode")

// Node 节点
//
// Node 只描述升级链路，不持有连接状态。创建后不可变，可并发使用。
type Node struct {
	transport  pkgif.Transport
	localPeer  types.PeerID
	upgrader   pkgif.Upgrader
	negotiator pkgif.ProtocolNegotiator

	supportedInbound   []string
	upgradeTimeout     time.Duration
	negotiationTimeout time.Duration

	reporter               *metrics.Reporter
	maxInboundNegotiations int64
}

// New 创建节点
//
// supportedInbound 是入站子流可协商的协议列表，按优先级排列。
// upgradeTimeout 约束每次连接升级，negotiationTimeout 约束每条子流的协商。
//
// 参数不满足前置条件（transport 或 identity 为 nil、超时非正数、
// 身份密钥无法签名 Noise 静态密钥）属于调用方编程错误，直接 panic。
func New(
	transport pkgif.Transport,
	identity crypto.PrivateKey,
	supportedInbound []string,
	upgradeTimeout, negotiationTimeout time.Duration,
	opts ...Option,
) *Node {
	if transport == nil {
		panic("p2pnode: nil transport")
	}
	if identity == nil {
		panic("p2pnode: nil identity key")
	}
	if upgradeTimeout <= 0 || negotiationTimeout <= 0 {
		panic("p2pnode: timeouts must be positive")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	secure, err := noise.New(identity, muxer.ID)
	if err != nil {
		panic(fmt.Sprintf("p2pnode: derive noise identity: %v", err))
	}
	mux, err := muxer.NewTransport(o.muxerConfig)
	if err != nil {
		panic(fmt.Sprintf("p2pnode: muxer config: %v", err))
	}
	negotiator := negotiation.New()
	up, err := upgrader.New(upgrader.Config{
		SecurityTransports: []pkgif.SecureTransport{secure},
		StreamMuxers:       []pkgif.StreamMuxer{mux},
		Verifier:           verifier.New(),
		Negotiator:         negotiator,
	})
	if err != nil {
		panic(fmt.Sprintf("p2pnode: build upgrader: %v", err))
	}

	n := &Node{
		transport:              transport,
		localPeer:              secure.LocalPeer(),
		upgrader:               up,
		negotiator:             negotiator,
		supportedInbound:       append([]string(nil), supportedInbound...),
		upgradeTimeout:         upgradeTimeout,
		negotiationTimeout:     negotiationTimeout,
		reporter:               o.reporter,
		maxInboundNegotiations: o.maxInboundNegotiations,
	}
	logger.Info("节点已创建",
		"peerID", n.localPeer.ShortString(),
		"protocols", len(n.supportedInbound))
	return n
}

// LocalPeer 返回本地节点 ID
func (n *Node) LocalPeer() types.PeerID {
	return n.localPeer
}

// SupportedProtocols 返回入站子流支持的协议副本
func (n *Node) SupportedProtocols() []string {
	return append([]string(nil), n.supportedInbound...)
}

// Connect 拨号并升级连接
//
// addr 末尾可带 /p2p/<id>，拨号时去掉，升级后要求远端身份与之一致。
// 拨号与升级整体受 upgradeTimeout 约束。
func (n *Node) Connect(ctx context.Context, addr ma.Multiaddr) (*Connection, error) {
	dialAddr, expected, err := splitPeerID(addr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeoutCause(ctx, n.upgradeTimeout, ErrUpgradeTimeout)
	defer cancel()

	start := time.Now()
	raw, err := n.transport.Dial(ctx, dialAddr)
	if err != nil {
		if errors.Is(context.Cause(ctx), ErrUpgradeTimeout) {
			err = fmt.Errorf("%w: %w", ErrUpgradeTimeout, err)
		}
		n.reporter.UpgradeDone(types.DirOutbound, upgradeResult(err), time.Since(start))
		return nil, fmt.Errorf("dial %s: %w", dialAddr, err)
	}

	return n.upgrade(ctx, raw, types.DirOutbound, expected, dialAddr, start)
}

// ListenOn 在 addr 上监听
func (n *Node) ListenOn(addr ma.Multiaddr) (*Listener, error) {
	inner, err := n.transport.Listen(addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return newListener(n, inner), nil
}

// upgrade 在 ctx 内完成升级，失败时原始连接已关闭
func (n *Node) upgrade(
	ctx context.Context,
	raw net.Conn,
	dir types.Direction,
	expected types.PeerID,
	remote ma.Multiaddr,
	start time.Time,
) (*Connection, error) {
	uc, err := n.upgrader.Upgrade(ctx, raw, dir, expected)
	if err != nil {
		err = classifyUpgradeError(ctx, err)
		n.reporter.UpgradeDone(dir, upgradeResult(err), time.Since(start))
		logger.Debug("连接升级失败", "direction", dir, "remote", remote, "error", err)
		return nil, &UpgradeError{Direction: dir, Remote: remote, Err: err}
	}
	n.reporter.UpgradeDone(dir, metrics.ResultSuccess, time.Since(start))
	return newConnection(n, uc, remote), nil
}

// classifyUpgradeError 把升级错误归入公共哨兵
func classifyUpgradeError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrUpgradeTimeout):
		return err
	case errors.Is(err, upgrader.ErrVerificationFailed):
		return fmt.Errorf("%w: %w", ErrPeerVerification, err)
	case ctx.Err() != nil && errors.Is(context.Cause(ctx), ErrUpgradeTimeout):
		return fmt.Errorf("%w: %w", ErrUpgradeTimeout, err)
	default:
		return err
	}
}

func upgradeResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrUpgradeTimeout):
		return metrics.ResultTimeout
	default:
		return metrics.ResultFailed
	}
}

// splitPeerID 拆出末尾的 /p2p/<id>
func splitPeerID(addr ma.Multiaddr) (ma.Multiaddr, types.PeerID, error) {
	if len(addr) == 0 {
		return nil, "", errors.New("empty address")
	}
	rest, last := ma.SplitLast(addr)
	if last == nil || last.Protocol().Code != ma.P_P2P {
		return addr, "", nil
	}
	id, err := types.ParsePeerID(last.Value())
	if err != nil {
		return nil, "", fmt.Errorf("address %s: %w", addr, err)
	}
	if len(rest) == 0 {
		return nil, "", fmt.Errorf("address %s: no transport part", addr)
	}
	return rest, id, nil
}
