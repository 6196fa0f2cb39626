package p2pnode

import (
	"context"
	"errors"
	"strings"

	"github.com/dep2p/go-p2pnode/internal/core/metrics"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

// Control 连接控制句柄，可并发使用
type Control struct {
	s *session
}

// OpenSubstream 打开子流并以拨号方身份协商 protocol
//
// 打开与协商整体受 negotiationTimeout 与 ctx 约束。
// 错误为 *SubstreamError，类别见 ErrorKind。
func (c *Control) OpenSubstream(ctx context.Context, protocol string) (*Substream, error) {
	return c.open(ctx, []string{protocol})
}

// OpenSubstreamAny 按顺序提议多个协议，返回对端接受的第一个
//
// 用于同一协议的多个版本并存的情况。
func (c *Control) OpenSubstreamAny(ctx context.Context, protocols ...string) (*Substream, error) {
	return c.open(ctx, protocols)
}

func (c *Control) open(ctx context.Context, protocols []string) (*Substream, error) {
	n := c.s.node
	fail := func(kind ErrorKind, err error) (*Substream, error) {
		n.reporter.NegotiationDone(types.DirOutbound, resultForKind(kind))
		return nil, &SubstreamError{
			Kind:      kind,
			Direction: types.DirOutbound,
			Protocol:  strings.Join(protocols, ","),
			Err:       err,
		}
	}

	if len(protocols) == 0 {
		return fail(KindNegotiationFailed, errors.New("no protocols proposed"))
	}

	ctx, cancel := context.WithTimeoutCause(ctx, n.negotiationTimeout, ErrNegotiationTimeout)
	defer cancel()

	st, err := c.s.conn.OpenStream(ctx)
	if err != nil {
		if isTimeout(ctx) {
			return fail(KindNegotiationTimeout, err)
		}
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return fail(KindMultiplexer, err)
	}

	stop := context.AfterFunc(ctx, func() {
		st.Reset()
	})
	proto, err := n.negotiator.Select(st, protocols...)
	if !stop() {
		if isTimeout(ctx) {
			return fail(KindNegotiationTimeout, err)
		}
		return nil, context.Cause(ctx)
	}
	if err != nil {
		st.Reset()
		if c.s.conn.IsClosed() {
			return fail(KindMultiplexer, err)
		}
		return fail(KindNegotiationFailed, err)
	}

	n.reporter.NegotiationDone(types.DirOutbound, metrics.ResultSuccess)
	logger.Debug("出站子流已打开", "conn", c.s.id, "protocol", proto)
	return newSubstream(st, proto, types.DirOutbound, n.reporter), nil
}

// CloseConnection 关闭连接
//
// 关闭是尽力而为的，失败只记录日志。对端的入站序列随之结束。
func (c *Control) CloseConnection() {
	if err := c.s.conn.Close(); err != nil {
		logger.Debug("关闭连接出错", "conn", c.s.id, "error", err)
	}
}

// isTimeout ctx 因协商时限或调用方截止时间结束
func isTimeout(ctx context.Context) bool {
	if ctx.Err() == nil {
		return false
	}
	cause := context.Cause(ctx)
	return errors.Is(cause, ErrNegotiationTimeout) || errors.Is(cause, context.DeadlineExceeded)
}
