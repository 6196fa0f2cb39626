// Package upgrader 实现连接升级器
//
// 把基础传输产生的原始连接升级为已认证、加密、多路复用的连接：
//
//	raw conn
//	  → multistream-select 安全协议（/noise）
//	  → Noise XX 握手
//	  → 远端身份校验
//	  → multistream-select 多路复用器（/yamux/1.0.0）
//	  → yamux 会话
//
// 方向决定每一步的角色：Outbound 为拨号方、握手发起方、yamux 客户端；
// Inbound 为监听方、握手响应方、yamux 服务端。
//
// 任一步失败或 ctx 结束时原始连接被关闭，不会泄漏。
package upgrader
