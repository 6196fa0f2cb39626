package upgrader

import (
	"context"
	"fmt"
	"io"
	"net"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

var logger = log.Logger("core/upgrader")

var _ pkgif.Upgrader = (*Upgrader)(nil)

// Upgrader 连接升级器，创建后不可变，可并发使用
type Upgrader struct {
	securityTransports []pkgif.SecureTransport
	streamMuxers       []pkgif.StreamMuxer
	verifier           pkgif.PeerVerifier
	negotiator         pkgif.ProtocolNegotiator

	securityIDs []string
	muxerIDs    []string
}

// New 创建连接升级器
func New(cfg Config) (*Upgrader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	u := &Upgrader{
		securityTransports: cfg.SecurityTransports,
		streamMuxers:       cfg.StreamMuxers,
		verifier:           cfg.Verifier,
		negotiator:         cfg.Negotiator,
	}
	for _, st := range cfg.SecurityTransports {
		u.securityIDs = append(u.securityIDs, st.ID())
	}
	for _, sm := range cfg.StreamMuxers {
		u.muxerIDs = append(u.muxerIDs, sm.ID())
	}
	return u, nil
}

// Upgrade 升级连接
//
// ctx 结束时原始连接被关闭，阻塞中的读写随之返回。
func (u *Upgrader) Upgrade(
	ctx context.Context,
	conn net.Conn,
	dir types.Direction,
	expected types.PeerID,
) (pkgif.UpgradedConn, error) {
	if dir != types.DirInbound && dir != types.DirOutbound {
		conn.Close()
		return nil, ErrInvalidDirection
	}

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})

	uc, err := u.upgrade(ctx, conn, dir, expected)
	if !stop() {
		// ctx 已触发关闭，升级结果不可用
		if uc != nil {
			uc.Close()
		}
		return nil, fmt.Errorf("upgrade %s: %w", dir, context.Cause(ctx))
	}
	if err != nil {
		conn.Close()
		logger.Debug("连接升级失败", "direction", dir, "remote", conn.RemoteAddr(), "error", err)
		return nil, err
	}

	logger.Debug("连接升级成功",
		"direction", dir,
		"remotePeer", uc.RemotePeer().ShortString(),
		"security", uc.Security(),
		"muxer", uc.Muxer())
	return uc, nil
}

func (u *Upgrader) upgrade(ctx context.Context, conn net.Conn, dir types.Direction, expected types.PeerID) (*upgradedConn, error) {
	isServer := dir == types.DirInbound

	// 1. 协商安全协议
	secProto, err := u.negotiate(conn, isServer, u.securityIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSecurityNegotiation, err)
	}
	st := u.securityTransports[indexOf(u.securityIDs, secProto)]

	// 2. 安全握手
	var secConn pkgif.SecureConn
	if isServer {
		secConn, err = st.SecureInbound(ctx, conn)
	} else {
		secConn, err = st.SecureOutbound(ctx, conn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}

	// 3. 身份校验在多路复用之前
	remotePeer, err := u.verifier.Verify(secConn, expected)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	// 4. 协商多路复用器
	muxerID, err := u.negotiate(secConn, isServer, u.muxerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMuxerNegotiation, err)
	}
	sm := u.streamMuxers[indexOf(u.muxerIDs, muxerID)]

	// 5. 建立会话
	mc, err := sm.NewConn(secConn, isServer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMuxerSetupFailed, err)
	}

	return &upgradedConn{
		MuxedConn:     mc,
		secConn:       secConn,
		remotePeer:    remotePeer,
		dir:           dir,
		securityProto: secProto,
		muxerID:       muxerID,
	}, nil
}

// negotiate 服务端从 ids 中选择，客户端按顺序提议 ids
func (u *Upgrader) negotiate(rwc io.ReadWriteCloser, isServer bool, ids []string) (string, error) {
	var (
		proto string
		err   error
	)
	if isServer {
		proto, err = u.negotiator.Negotiate(rwc, ids)
	} else {
		proto, err = u.negotiator.Select(rwc, ids...)
	}
	if err != nil {
		return "", err
	}
	if indexOf(ids, proto) < 0 {
		return "", fmt.Errorf("negotiated unknown protocol %q", proto)
	}
	return proto, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
