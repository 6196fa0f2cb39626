package noise

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/flynn/noise"

	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	noisepb "github.com/dep2p/go-p2pnode/pkg/lib/proto/noise"
)

var noDeadline time.Time

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// handshake 执行 XX 握手并返回加密连接
func (t *Transport) handshake(conn net.Conn, initiator bool) (*secureConn, error) {
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: t.staticKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create handshake state: %w", err)
	}

	var (
		sendCS, recvCS *noise.CipherState
		remotePayload  []byte
	)
	if initiator {
		sendCS, recvCS, remotePayload, err = t.initiatorHandshake(conn, hs)
	} else {
		sendCS, recvCS, remotePayload, err = t.responderHandshake(conn, hs)
	}
	if err != nil {
		return nil, err
	}

	remoteKey, muxers, err := verifyPayload(remotePayload, hs.PeerStatic())
	if err != nil {
		return nil, err
	}
	remotePeer, err := crypto.PeerIDFromPublicKey(remoteKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHandshake, err)
	}

	return &secureConn{
		Conn:         conn,
		sendCS:       sendCS,
		recvCS:       recvCS,
		localPeer:    t.localPeer,
		remotePeer:   remotePeer,
		remoteKey:    remoteKey,
		remoteMuxers: muxers,
	}, nil
}

// initiatorHandshake 发起方三轮消息
func (t *Transport) initiatorHandshake(conn net.Conn, hs *noise.HandshakeState) (*noise.CipherState, *noise.CipherState, []byte, error) {
	msg1, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 1: %w", err)
	}
	if err := writeFrame(conn, msg1); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 1: %w", err)
	}

	msg2, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 2: %w", err)
	}
	remotePayload, _, _, err := hs.ReadMessage(nil, msg2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: read message 2: %v", ErrInvalidHandshake, err)
	}

	msg3, cs1, cs2, err := hs.WriteMessage(nil, t.payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 3: %w", err)
	}
	if err := writeFrame(conn, msg3); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 3: %w", err)
	}

	// 发起方：cs1 加密，cs2 解密
	return cs1, cs2, remotePayload, nil
}

// responderHandshake 响应方三轮消息
func (t *Transport) responderHandshake(conn net.Conn, hs *noise.HandshakeState) (*noise.CipherState, *noise.CipherState, []byte, error) {
	msg1, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 1: %w", err)
	}
	if _, _, _, err := hs.ReadMessage(nil, msg1); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: read message 1: %v", ErrInvalidHandshake, err)
	}

	msg2, _, _, err := hs.WriteMessage(nil, t.payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 2: %w", err)
	}
	if err := writeFrame(conn, msg2); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 2: %w", err)
	}

	msg3, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 3: %w", err)
	}
	remotePayload, cs1, cs2, err := hs.ReadMessage(nil, msg3)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: read message 3: %v", ErrInvalidHandshake, err)
	}

	// 响应方与发起方相反
	return cs2, cs1, remotePayload, nil
}

// verifyPayload 解析对端 payload，校验其身份密钥对静态密钥的签名
func verifyPayload(data, remoteStatic []byte) (crypto.PublicKey, []string, error) {
	var payload noisepb.HandshakePayload
	if err := payload.Unmarshal(data); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHandshake, err)
	}
	if len(remoteStatic) != noise.DH25519.DHLen() {
		return nil, nil, fmt.Errorf("%w: remote static key length %d", ErrInvalidHandshake, len(remoteStatic))
	}

	key, err := crypto.UnmarshalPublicKeyBytes(payload.IdentityKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: identity key: %v", ErrInvalidHandshake, err)
	}

	ok, err := key.Verify(append([]byte(payloadSigPrefix), remoteStatic...), payload.IdentitySig)
	if err != nil || !ok {
		return nil, nil, ErrInvalidSignature
	}

	var muxers []string
	if payload.Extensions != nil {
		muxers = payload.Extensions.StreamMuxers
	}
	return key, muxers, nil
}

// writeFrame 写入帧（2 字节长度 + 数据），一次写出
func writeFrame(w io.Writer, data []byte) error {
	buf := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(buf, uint16(len(data)))
	copy(buf[2:], data)
	_, err := w.Write(buf)
	return err
}

// readFrame 读取帧（2 字节长度 + 数据）
func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	data := make([]byte, binary.BigEndian.Uint16(lenBuf[:]))
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
