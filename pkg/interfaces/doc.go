// Package interfaces 定义 go-p2pnode 的公共接口
//
// 连接升级管道的每一层对应一个接口文件，由 internal/core 下同名目录实现：
//
//   - transport.go      - 基础传输（TCP / Memory / WebSocket）
//   - security.go       - 安全握手（Noise）
//   - verifier.go       - 远端身份校验
//   - muxer.go          - 流多路复用（yamux）
//   - negotiation.go    - 协议协商（multistream-select）
//   - upgrader.go       - 连接升级（组合以上各层）
//
// # 依赖方向
//
//	p2pnode → upgrader → security / muxer / negotiation → transport
//
// 禁止反向依赖。
package interfaces
