package transport

import "errors"

var (
	// ErrInvalidAddress 地址不适用于该传输
	ErrInvalidAddress = errors.New("invalid multiaddr for transport")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("listener closed")
)
