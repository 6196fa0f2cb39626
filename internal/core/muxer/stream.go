package muxer

import (
	"time"

	"github.com/libp2p/go-yamux/v5"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
)

// muxedStream 包装 yamux.Stream
//
// 所有操作返回的 yamux 错误都经 parseError 映射，
// 调用方只需匹配 ErrStreamReset / ErrConnClosed。
type muxedStream struct {
	stream *yamux.Stream
}

var _ pkgif.MuxedStream = (*muxedStream)(nil)

func newMuxedStream(s *yamux.Stream) *muxedStream {
	return &muxedStream{stream: s}
}

// Read 读取数据，对端重置时返回 ErrStreamReset
func (s *muxedStream) Read(p []byte) (int, error) {
	n, err := s.stream.Read(p)
	return n, parseError(err)
}

// Write 写入数据，本地或对端重置后返回 ErrStreamReset
func (s *muxedStream) Write(p []byte) (int, error) {
	n, err := s.stream.Write(p)
	return n, parseError(err)
}

// Close 关闭双向
func (s *muxedStream) Close() error {
	return parseError(s.stream.Close())
}

// CloseWrite 半关闭写端，对端读到 EOF
func (s *muxedStream) CloseWrite() error {
	return parseError(s.stream.CloseWrite())
}

// CloseRead 半关闭读端
func (s *muxedStream) CloseRead() error {
	return parseError(s.stream.CloseRead())
}

// Reset 立即中止流，两端未完成的读写都会失败
func (s *muxedStream) Reset() error {
	return parseError(s.stream.Reset())
}

func (s *muxedStream) SetDeadline(t time.Time) error {
	return parseError(s.stream.SetDeadline(t))
}

func (s *muxedStream) SetReadDeadline(t time.Time) error {
	return parseError(s.stream.SetReadDeadline(t))
}

func (s *muxedStream) SetWriteDeadline(t time.Time) error {
	return parseError(s.stream.SetWriteDeadline(t))
}
