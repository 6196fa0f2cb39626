package types

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 连接方向
//
// 握手角色和多路复用角色都由方向决定：
//   - DirOutbound: 拨号方，Noise 发起者，yamux 客户端
//   - DirInbound:  监听方，Noise 响应者，yamux 服务端
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站连接
	DirInbound
	// DirOutbound 出站连接
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// IsInitiator 是否为发起方
func (d Direction) IsInitiator() bool {
	return d == DirOutbound
}
