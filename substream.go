package p2pnode

import (
	"github.com/dep2p/go-p2pnode/internal/core/metrics"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

// Substream 已协商应用协议的子流
//
// 读写直接作用于 yamux 流。Close 正常关闭，Reset 异常终止。
type Substream struct {
	pkgif.MuxedStream

	protocol  string
	direction types.Direction
	reporter  *metrics.Reporter
}

func newSubstream(s pkgif.MuxedStream, protocol string, dir types.Direction, r *metrics.Reporter) *Substream {
	return &Substream{
		MuxedStream: s,
		protocol:    protocol,
		direction:   dir,
		reporter:    r,
	}
}

// Protocol 返回协商结果
func (s *Substream) Protocol() string {
	return s.protocol
}

// Direction 返回子流方向，Outbound 表示本端打开
func (s *Substream) Direction() types.Direction {
	return s.direction
}

func (s *Substream) Read(p []byte) (int, error) {
	n, err := s.MuxedStream.Read(p)
	s.reporter.LogRecvStream(n, s.protocol)
	return n, err
}

func (s *Substream) Write(p []byte) (int, error) {
	n, err := s.MuxedStream.Write(p)
	s.reporter.LogSentStream(n, s.protocol)
	return n, err
}

// InboundSubstream 对端打开并协商成功的子流
type InboundSubstream struct {
	Substream *Substream
	Protocol  string
}
