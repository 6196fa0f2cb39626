// Package crypto 提供节点身份相关的密码学工具
//
// 支持两种身份密钥：
//
//   - Ed25519（默认，标准库实现）
//   - Secp256k1（decred secp256k1 实现，区块链兼容）
//
// 公钥按 [Type(1)][Length(4)][Data] 格式序列化，PeerID 由序列化后公钥的
// sha2-256 multihash 经 base58 编码得到：
//
//	priv, pub, _ := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
//	id, _ := crypto.PeerIDFromPublicKey(pub)
//	_ = priv
package crypto
