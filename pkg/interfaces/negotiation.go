package interfaces

import "io"

// ProtocolNegotiator 协议协商接口（multistream-select）
type ProtocolNegotiator interface {
	// Negotiate 以监听方身份协商，从 supported 中选出对端请求的协议
	Negotiate(rwc io.ReadWriteCloser, supported []string) (string, error)

	// Select 以拨号方身份按顺序提议 protocols，返回对端接受的协议
	Select(rwc io.ReadWriteCloser, protocols ...string) (string, error)
}
