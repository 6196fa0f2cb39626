package protocolids

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dep2p/go-p2pnode/pkg/types"
)

// ============================================================================
// 升级链路
// ============================================================================

// Multistream multistream-select 头
const Multistream types.ProtocolID = "/multistream/1.0.0"

// Noise Noise XX 安全传输
const Noise types.ProtocolID = "/noise"

// Yamux yamux 多路复用
const Yamux types.ProtocolID = "/yamux/1.0.0"

// ============================================================================
// 示例应用
// ============================================================================

// Hello 长度前缀问候协议
const Hello types.ProtocolID = "/hello/1.0.0"

// maxLength multistream-select 单条消息上限减去换行符
const maxLength = 1023

// ErrInvalidProtocolID 协议 ID 不合法
var ErrInvalidProtocolID = errors.New("invalid protocol id")

// Validate 检查协议 ID 能否在 multistream-select 中传输
//
// 要求以 "/" 开头，不含换行，长度不超过单条消息上限。
func Validate(id types.ProtocolID) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidProtocolID)
	case !strings.HasPrefix(id, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidProtocolID, id)
	case strings.ContainsAny(id, "\r\n"):
		return fmt.Errorf("%w: %q contains newline", ErrInvalidProtocolID, id)
	case len(id) > maxLength:
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidProtocolID, len(id), maxLength)
	}
	return nil
}
