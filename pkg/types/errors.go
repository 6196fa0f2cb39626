package types

import "errors"

var (
	// ErrEmptyPeerID 空 PeerID
	ErrEmptyPeerID = errors.New("empty peer ID")

	// ErrInvalidPeerID 无效的 PeerID
	ErrInvalidPeerID = errors.New("invalid peer ID")
)
