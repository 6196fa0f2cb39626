package config

import (
	"fmt"

	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
)

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyType 密钥类型，"Ed25519" 或 "Secp256k1"
	KeyType string `json:"key_type" yaml:"key_type"`

	// KeyFile 密钥文件路径，为空时使用临时密钥
	KeyFile string `json:"key_file" yaml:"key_file"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		KeyType: "Ed25519",
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if _, err := crypto.ParseKeyType(c.KeyType); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	return nil
}

// LoadKey 按配置加载或生成身份密钥
func (c IdentityConfig) LoadKey() (crypto.PrivateKey, error) {
	kt, err := crypto.ParseKeyType(c.KeyType)
	if err != nil {
		return nil, err
	}
	return crypto.LoadOrGenerateKey(c.KeyFile, kt)
}
