package negotiation

import (
	"errors"
	"net"
	"testing"

	mss "github.com/multiformats/go-multistream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type negotiateResult struct {
	proto string
	err   error
}

// runPair 在 net.Pipe 两端分别运行监听方与拨号方
func runPair(t *testing.T, supported []string, proposals ...string) (listener, dialer negotiateResult) {
	t.Helper()

	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	n := New()
	lisCh := make(chan negotiateResult, 1)
	go func() {
		p, err := n.Negotiate(a, supported)
		if err != nil {
			// 放弃协商时关闭，使拨号方读到 EOF
			a.Close()
		}
		lisCh <- negotiateResult{p, err}
	}()

	p, err := n.Select(b, proposals...)
	dialer = negotiateResult{p, err}
	if err != nil {
		b.Close()
	}
	listener = <-lisCh
	return listener, dialer
}

func TestNegotiate_Success(t *testing.T) {
	lis, dial := runPair(t, []string{"/echo/1.0.0", "/hello/1.0.0"}, "/hello/1.0.0")

	require.NoError(t, lis.err)
	require.NoError(t, dial.err)
	assert.Equal(t, "/hello/1.0.0", lis.proto)
	assert.Equal(t, "/hello/1.0.0", dial.proto)
}

func TestNegotiate_FallbackToSecondProposal(t *testing.T) {
	lis, dial := runPair(t, []string{"/hello/1.0.0"}, "/hello/2.0.0", "/hello/1.0.0")

	require.NoError(t, lis.err)
	require.NoError(t, dial.err)
	assert.Equal(t, "/hello/1.0.0", dial.proto)
	t.Log("✅ 第一个提议被拒绝后回退成功")
}

func TestNegotiate_NoCommonProtocol(t *testing.T) {
	lis, dial := runPair(t, []string{"/hello/1.0.0"}, "/unknown/1.0.0")

	require.Error(t, dial.err)
	assert.ErrorIs(t, dial.err, ErrNoCommonProtocol)

	var notSupported mss.ErrNotSupported[string]
	assert.True(t, errors.As(dial.err, &notSupported))

	require.Error(t, lis.err)
	assert.ErrorIs(t, lis.err, ErrPeerClosed)
}

func TestNegotiate_EmptyInputs(t *testing.T) {
	n := New()
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	_, err := n.Negotiate(a, nil)
	assert.ErrorIs(t, err, ErrNoProtocols)

	_, err = n.Select(b)
	assert.ErrorIs(t, err, ErrNoProtocols)
}
