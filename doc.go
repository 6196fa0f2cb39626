// Package p2pnode 在任意字节流传输之上建立经过认证、加密、多路复用的连接
//
// 每条原始连接（拨出或接入）依次经过：
//
//	multistream-select "/noise"  →  Noise XX 握手  →  远端身份校验
//	  →  multistream-select "/yamux/1.0.0"  →  yamux 会话
//
// 会话上的每条子流再用 multistream-select 协商一个应用协议。
// 拨出方是握手发起方和 yamux 客户端，接入方反之。
//
// # 快速开始
//
//	key, _, _ := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
//	node := p2pnode.New(tcp.New(), key, []string{"/hello/1.0.0"},
//	    20*time.Second, 10*time.Second)
//
//	// 监听
//	l, err := node.ListenOn(ma.StringCast("/ip4/127.0.0.1/tcp/4001"))
//	conn, err := l.Next(ctx)
//	in, err := conn.Inbound.Next(ctx)
//
//	// 拨号，末尾的 /p2p/<id> 会被校验
//	conn, err = node.Connect(ctx, addr)
//	s, err := conn.Control.OpenSubstream(ctx, "/hello/1.0.0")
//
// # 错误
//
// 子流失败以 *SubstreamError 返回，可匹配 ErrNegotiationTimeout、
// ErrNegotiationFailed 或 ErrMultiplexer。只有 ErrMultiplexer 意味着连接失效，
// 见 IsConnectionFatal。连接升级失败以 *UpgradeError 返回。
package p2pnode
