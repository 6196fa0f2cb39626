package memory

import (
	"encoding/binary"
	"fmt"
	"strconv"

	ma "github.com/multiformats/go-multiaddr"
)

// ProtocolCode /memory/<port> 协议编号
const ProtocolCode = 777

const protocolName = "memory"

func init() {
	// 新版 go-multiaddr 已内置 memory 协议，仅在缺失时注册
	if ma.ProtocolWithName(protocolName).Code != 0 {
		return
	}
	err := ma.AddProtocol(ma.Protocol{
		Name:       protocolName,
		Code:       ProtocolCode,
		VCode:      ma.CodeToVarint(ProtocolCode),
		Size:       64,
		Transcoder: ma.NewTranscoderFromFunctions(portStringToBytes, portBytesToString, validatePort),
	})
	if err != nil {
		panic(fmt.Sprintf("register memory multiaddr protocol: %v", err))
	}
}

func portStringToBytes(s string) ([]byte, error) {
	port, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid memory port %q: %w", s, err)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, port)
	return b, nil
}

func portBytesToString(b []byte) (string, error) {
	if err := validatePort(b); err != nil {
		return "", err
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(b), 10), nil
}

func validatePort(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("invalid memory port length %d", len(b))
	}
	return nil
}

// Multiaddr 构造 /memory/<port>
func Multiaddr(port uint64) ma.Multiaddr {
	return ma.StringCast("/memory/" + strconv.FormatUint(port, 10))
}

// parsePort 从 /memory/<port> 中取出端口
func parsePort(addr ma.Multiaddr) (uint64, bool) {
	protos := addr.Protocols()
	if len(protos) != 1 || protos[0].Name != protocolName {
		return 0, false
	}
	v, err := addr.ValueForProtocol(protos[0].Code)
	if err != nil {
		return 0, false
	}
	port, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return port, true
}
