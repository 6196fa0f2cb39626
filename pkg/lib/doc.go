// Package lib 包含与架构组件无关的基础库
//
//   - crypto: 身份密钥、签名与 PeerID 推导
//   - log: 基于 slog 的组件日志
//   - proto: 握手负载的 protobuf 线格式
package lib
