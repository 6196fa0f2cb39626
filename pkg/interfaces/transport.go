package interfaces

import (
	"context"
	"net"

	ma "github.com/multiformats/go-multiaddr"
)

// Transport 基础传输接口
//
// Transport 只负责建立原始字节流连接，安全与多路复用由 Upgrader 完成。
type Transport interface {
	// Dial 拨号到指定地址，返回原始连接
	Dial(ctx context.Context, raddr ma.Multiaddr) (net.Conn, error)

	// CanDial 检查是否支持拨号到指定地址
	CanDial(addr ma.Multiaddr) bool

	// Listen 在指定地址监听
	Listen(laddr ma.Multiaddr) (Listener, error)

	// Protocols 返回支持的 multiaddr 协议编号
	Protocols() []int
}

// Listener 监听器接口
//
// 监听器以事件流的形式报告地址变化和入站连接。
// Close 之后 Events 通道会被关闭。
type Listener interface {
	// Events 返回事件通道
	Events() <-chan ListenerEvent

	// Multiaddr 返回实际监听地址
	Multiaddr() ma.Multiaddr

	// Close 关闭监听器
	Close() error
}

// ListenerEventKind 监听事件类型
type ListenerEventKind int

const (
	// ListenerNewAddress 开始在新地址上监听
	ListenerNewAddress ListenerEventKind = iota
	// ListenerAddressExpired 地址不再可用
	ListenerAddressExpired
	// ListenerUpgrade 新的入站原始连接，等待升级
	ListenerUpgrade
	// ListenerError 监听器遇到错误（非致命）
	ListenerError
)

// String 返回事件类型名称
func (k ListenerEventKind) String() string {
	switch k {
	case ListenerNewAddress:
		return "new-address"
	case ListenerAddressExpired:
		return "address-expired"
	case ListenerUpgrade:
		return "upgrade"
	case ListenerError:
		return "error"
	default:
		return "unknown"
	}
}

// ListenerEvent 监听事件
type ListenerEvent struct {
	Kind ListenerEventKind

	// Addr NewAddress / AddressExpired 事件的地址
	Addr ma.Multiaddr

	// Conn Upgrade 事件的原始连接
	Conn net.Conn
	// LocalAddr / RemoteAddr Upgrade 事件的两端地址
	LocalAddr  ma.Multiaddr
	RemoteAddr ma.Multiaddr

	// Err Error 事件的错误
	Err error
}
