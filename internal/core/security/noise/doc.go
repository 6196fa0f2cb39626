// Package noise 实现 Noise 协议安全传输
//
// 遵循 libp2p-noise 规范（Noise_XX_25519_ChaChaPoly_SHA256）：
//
//	-> e
//	<- e, ee, s, es, payload
//	-> s, se, payload
//
// 每个 Transport 在创建时生成一对 X25519 静态密钥，并用节点身份私钥签名
// "noise-libp2p-static-key:" || 静态公钥。签名随握手 payload 发送，
// 对端据此确认静态密钥确实属于该身份。
//
// 握手完成后，消息按 [长度(2 字节大端)][密文] 分帧传输，
// 单帧明文上限 65535-16 字节。
package noise
