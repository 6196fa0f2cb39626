// Package proto 定义 go-p2pnode 跨网络传输的消息格式（wire format）
//
// # 子包
//
//   - noise: Noise 握手 payload（身份公钥、静态密钥签名、扩展）
//
// 消息按 protobuf wire format 编码，字段编号与 libp2p-noise 规范一致，
// 以便与其他实现互通。
package proto
