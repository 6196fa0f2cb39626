package p2pnode

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	ma "github.com/multiformats/go-multiaddr"
	"golang.org/x/sync/semaphore"

	"github.com/dep2p/go-p2pnode/internal/core/metrics"
	"github.com/dep2p/go-p2pnode/internal/core/muxer"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

// inboundBufferSize 入站结果缓冲
const inboundBufferSize = 16

// Connection 升级完成的连接
type Connection struct {
	// ID 本地生成的连接标识，用于日志关联
	ID string

	// PeerID 已校验的远端节点 ID
	PeerID types.PeerID

	// Direction 连接方向
	Direction types.Direction

	// RemoteAddr 远端地址
	RemoteAddr ma.Multiaddr

	// Control 打开子流和关闭连接
	Control *Control

	// Inbound 对端打开的子流序列
	Inbound *InboundSubstreams
}

// session 一条连接的共享状态，由 Control 与 InboundSubstreams 共用
type session struct {
	id   string
	node *Node
	conn pkgif.UpgradedConn

	// ctx 在会话关闭时取消
	ctx    context.Context
	cancel context.CancelFunc
}

func newConnection(n *Node, uc pkgif.UpgradedConn, remote ma.Multiaddr) *Connection {
	s := &session{
		id:   uuid.NewString(),
		node: n,
		conn: uc,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	n.reporter.ConnOpened()
	go func() {
		<-uc.CloseChan()
		s.cancel()
		n.reporter.ConnClosed()
		logger.Debug("连接已关闭", "conn", s.id, "remotePeer", uc.RemotePeer().ShortString())
	}()

	logger.Info("连接已建立",
		"conn", s.id,
		"direction", uc.Direction(),
		"remotePeer", uc.RemotePeer().ShortString(),
		"remote", remote)

	return &Connection{
		ID:         s.id,
		PeerID:     uc.RemotePeer(),
		Direction:  uc.Direction(),
		RemoteAddr: remote,
		Control:    &Control{s: s},
		Inbound:    newInboundSubstreams(s),
	}
}

// inboundResult 入站序列中的一项
type inboundResult struct {
	sub *InboundSubstream
	err error
}

// InboundSubstreams 对端打开的子流序列
//
// 第一次调用 Next 时才开始接受入站流。每条流独立协商，
// 结果按完成先后交付。单条流失败不会结束序列；
// 多路复用层出错时交付一个 ErrMultiplexer 后结束。
type InboundSubstreams struct {
	s    *session
	sem  *semaphore.Weighted
	once sync.Once

	results chan inboundResult

	// fatal 多路复用错误，在 results 关闭后交付一次
	mu    sync.Mutex
	fatal error
}

func newInboundSubstreams(s *session) *InboundSubstreams {
	in := &InboundSubstreams{
		s:       s,
		results: make(chan inboundResult, inboundBufferSize),
	}
	if n := s.node.maxInboundNegotiations; n > 0 {
		in.sem = semaphore.NewWeighted(n)
	}
	return in
}

// Next 返回下一条入站子流
//
// 单条子流失败返回 *SubstreamError，之后仍可继续调用。
// 序列结束后返回 ErrConnectionClosed。
func (in *InboundSubstreams) Next(ctx context.Context) (*InboundSubstream, error) {
	in.once.Do(func() {
		go in.acceptLoop()
	})

	select {
	case r, ok := <-in.results:
		if !ok {
			if err := in.takeFatal(); err != nil {
				return nil, err
			}
			return nil, ErrConnectionClosed
		}
		return r.sub, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (in *InboundSubstreams) acceptLoop() {
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		close(in.results)
	}()

	for {
		st, err := in.s.conn.AcceptStream()
		if err != nil {
			if !isCleanShutdown(err) {
				logger.Debug("接受入站流失败", "conn", in.s.id, "error", err)
				in.mu.Lock()
				in.fatal = &SubstreamError{
					Kind:      KindMultiplexer,
					Direction: types.DirInbound,
					Err:       err,
				}
				in.mu.Unlock()
			}
			return
		}

		if in.sem != nil {
			if err := in.sem.Acquire(in.s.ctx, 1); err != nil {
				st.Reset()
				return
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if in.sem != nil {
				defer in.sem.Release(1)
			}
			if r, ok := in.negotiate(st); ok {
				in.push(r)
			}
		}()
	}
}

// negotiate 以监听方身份协商，ok 为 false 表示会话已关闭、结果丢弃
func (in *InboundSubstreams) negotiate(st pkgif.MuxedStream) (inboundResult, bool) {
	n := in.s.node
	ctx, cancel := context.WithTimeoutCause(in.s.ctx, n.negotiationTimeout, ErrNegotiationTimeout)
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		st.Reset()
	})
	proto, err := n.negotiator.Negotiate(st, n.supportedInbound)
	if !stop() {
		if !errors.Is(context.Cause(ctx), ErrNegotiationTimeout) {
			return inboundResult{}, false
		}
		n.reporter.NegotiationDone(types.DirInbound, metrics.ResultTimeout)
		logger.Debug("入站协商超时", "conn", in.s.id)
		return inboundResult{err: &SubstreamError{
			Kind:      KindNegotiationTimeout,
			Direction: types.DirInbound,
			Err:       err,
		}}, true
	}
	if err != nil {
		st.Reset()
		kind := KindNegotiationFailed
		if in.s.conn.IsClosed() {
			kind = KindMultiplexer
		}
		n.reporter.NegotiationDone(types.DirInbound, resultForKind(kind))
		logger.Debug("入站协商失败", "conn", in.s.id, "error", err)
		return inboundResult{err: &SubstreamError{
			Kind:      kind,
			Direction: types.DirInbound,
			Err:       err,
		}}, true
	}

	n.reporter.NegotiationDone(types.DirInbound, metrics.ResultSuccess)
	return inboundResult{sub: &InboundSubstream{
		Substream: newSubstream(st, proto, types.DirInbound, n.reporter),
		Protocol:  proto,
	}}, true
}

func (in *InboundSubstreams) takeFatal() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	err := in.fatal
	in.fatal = nil
	return err
}

// push 交付结果，会话关闭后丢弃并释放子流
func (in *InboundSubstreams) push(r inboundResult) {
	select {
	case in.results <- r:
	case <-in.s.ctx.Done():
		if r.sub != nil {
			r.sub.Substream.Reset()
		}
	}
}

// isCleanShutdown 会话被任一方正常关闭
func isCleanShutdown(err error) bool {
	return errors.Is(err, muxer.ErrConnClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}

func resultForKind(k ErrorKind) string {
	switch k {
	case KindNegotiationTimeout:
		return metrics.ResultTimeout
	case KindMultiplexer:
		return metrics.ResultMultiplexer
	default:
		return metrics.ResultFailed
	}
}
