package crypto

import (
	"encoding/binary"
	"fmt"
)

// 序列化格式：
//
//	┌────────────────────────────────────┐
//	│  Type:   uint8 (KeyType)           │
//	│  Length: uint32 (大端序)            │
//	│  Data:   密钥数据                   │
//	└────────────────────────────────────┘
const marshalHeaderSize = 5

// MarshalPublicKey 序列化公钥
func MarshalPublicKey(key PublicKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPublicKey
	}
	return marshalKey(key)
}

// MarshalPrivateKey 序列化私钥
func MarshalPrivateKey(key PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}
	return marshalKey(key)
}

// UnmarshalPublicKeyBytes 反序列化公钥
func UnmarshalPublicKeyBytes(data []byte) (PublicKey, error) {
	kt, raw, err := splitKey(data)
	if err != nil {
		return nil, err
	}
	return UnmarshalPublicKey(kt, raw)
}

// UnmarshalPrivateKeyBytes 反序列化私钥
func UnmarshalPrivateKeyBytes(data []byte) (PrivateKey, error) {
	kt, raw, err := splitKey(data)
	if err != nil {
		return nil, err
	}
	return UnmarshalPrivateKey(kt, raw)
}

func marshalKey(key Key) ([]byte, error) {
	raw, err := key.Raw()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}
	buf := make([]byte, marshalHeaderSize+len(raw))
	buf[0] = byte(key.Type())
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(raw)))
	copy(buf[5:], raw)
	return buf, nil
}

func splitKey(data []byte) (KeyType, []byte, error) {
	if len(data) < marshalHeaderSize {
		return KeyTypeUnspecified, nil, fmt.Errorf("%w: data too short", ErrUnmarshalFailed)
	}
	length := binary.BigEndian.Uint32(data[1:5])
	if uint64(len(data)-marshalHeaderSize) != uint64(length) {
		return KeyTypeUnspecified, nil, fmt.Errorf("%w: data length mismatch", ErrUnmarshalFailed)
	}
	return KeyType(data[0]), data[marshalHeaderSize:], nil
}
