package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// keyFileMode 密钥文件权限
const keyFileMode = 0o600

// SaveKey 以十六进制文本写入私钥
func SaveKey(path string, key PrivateKey) error {
	data, err := MarshalPrivateKey(key)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(data)+"\n"), keyFileMode)
}

// LoadKey 读取 SaveKey 写入的私钥
func LoadKey(path string) (PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFileCorrupt, err)
	}
	key, err := UnmarshalPrivateKeyBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFileCorrupt, err)
	}
	return key, nil
}

// LoadOrGenerateKey 读取密钥文件，不存在时生成新密钥并保存
//
// path 为空时只生成临时密钥，不落盘。
func LoadOrGenerateKey(path string, kt KeyType) (PrivateKey, error) {
	if path != "" {
		key, err := LoadKey(path)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	priv, _, err := GenerateKeyPair(kt)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return priv, nil
	}
	if err := SaveKey(path, priv); err != nil {
		return nil, fmt.Errorf("save key: %w", err)
	}
	return priv, nil
}
