//go:build darwin

package machport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocatesReceiveRight(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.HasReceive())
	assert.False(t, p.HasSend())
	assert.NotEqual(t, PortNull, p.Raw())
	assert.NotEqual(t, PortDead, p.Raw())
}

func TestMakeSender(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	s, err := p.MakeSender()
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.HasSend())
	assert.False(t, s.HasReceive())
}

func TestFromRawAdoption(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	// Hand the name over and adopt it back; the kernel reports which rights
	// actually exist there.
	raw := p.IntoRaw()
	q, err := FromRaw(raw)
	require.NoError(t, err)
	defer q.Close()

	assert.True(t, q.HasReceive())
	assert.False(t, q.HasSend())

	// The original owner gave its rights up.
	assert.NoError(t, p.Close())
}

func TestSelfLoop(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	s, err := p.MakeSender()
	require.NoError(t, err)
	defer s.Close()

	buf := NewBuffer()
	buf.ExtendInlineData([]byte{1, 2, 3, 4})

	require.NoError(t, s.Send(buf, Forever))
	// Send resets the buffer for reuse.
	assert.Equal(t, startSize, buf.Len())

	require.NoError(t, p.Recv(buf, Forever))
	assert.Equal(t, []byte{1, 2, 3, 4}, buf.InlineData())
	assert.Equal(t, 0, buf.DescriptorCount())
}

func TestSelfLoopBufferReuse(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	s, err := p.MakeSender()
	require.NoError(t, err)
	defer s.Close()

	buf := NewBuffer()
	for i := byte(0); i < 3; i++ {
		buf.ExtendInlineData([]byte{i, i + 1})
		require.NoError(t, s.Send(buf, Forever))
		require.NoError(t, p.Recv(buf, Forever))
		assert.Equal(t, []byte{i, i + 1}, buf.InlineData())
		buf.Reset()
	}
}

func TestMoveReceiveRightTransfer(t *testing.T) {
	carrier, err := New()
	require.NoError(t, err)
	defer carrier.Close()

	sender, err := carrier.MakeSender()
	require.NoError(t, err)
	defer sender.Close()

	transferred, err := New()
	require.NoError(t, err)

	buf := NewBuffer()
	buf.MoveRight(MoveReceive, transferred)
	// Ownership moved into the message; the original value must not release.
	assert.False(t, transferred.HasReceive())

	require.NoError(t, sender.Send(buf, Forever))
	require.NoError(t, carrier.Recv(buf, Forever))

	require.Equal(t, 1, buf.DescriptorCount())
	assert.True(t, buf.Complex())

	pd := buf.Descriptors().Next().Port()
	require.NotNil(t, pd)

	got, err := pd.TakePort()
	require.NoError(t, err)
	require.NotNil(t, got)
	defer got.Close()

	assert.True(t, got.HasReceive())

	// The right came out of the descriptor; a second take finds nothing.
	again, err := pd.TakePort()
	require.NoError(t, err)
	assert.Nil(t, again)

	assert.NoError(t, transferred.Close())
}

func TestRecvTimeout(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	buf := NewBuffer()
	start := time.Now()
	err = p.Recv(buf, 10*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "want timeout, got %v", err)

	var kerr *KernelError
	require.True(t, errors.As(err, &kerr))
	assert.True(t, kerr.Timeout())

	// Not instantaneous, not hanging.
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRecvTooLargeGrowRetry(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	s, err := p.MakeSender()
	require.NoError(t, err)
	defer s.Close()

	big := make([]byte, 512)
	for i := range big {
		big[i] = byte(i)
	}
	out := NewBuffer()
	out.ExtendInlineData(big)
	require.NoError(t, s.Send(out, Forever))

	// A fresh buffer only has room for header plus trailer; the kernel
	// reports the oversize instead of truncating, and the message stays
	// queued for the retry.
	in := NewBuffer()
	err = p.Recv(in, time.Second)
	require.Error(t, err)
	var kerr *KernelError
	require.True(t, errors.As(err, &kerr))
	require.True(t, kerr.TooLarge(), "want too-large, got %v", err)

	in.ReserveInlineData(len(big))
	require.NoError(t, p.Recv(in, time.Second))
	assert.Equal(t, big, append([]byte(nil), in.InlineData()...))
}

func TestSendAfterTimeoutFailureIsClean(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	s, err := p.MakeSender()
	require.NoError(t, err)
	defer s.Close()

	buf := NewBuffer()
	buf.ExtendInlineData([]byte{42})

	// A failed receive elsewhere must not leave stale state in the buffer:
	// the same buffer still sends.
	other, err := New()
	require.NoError(t, err)
	defer other.Close()
	otherBuf := NewBuffer()
	require.Error(t, other.Recv(otherBuf, 5*time.Millisecond))

	require.NoError(t, s.Send(buf, time.Second))
	require.NoError(t, p.Recv(buf, time.Second))
	assert.Equal(t, []byte{42}, buf.InlineData())
}

func TestCloseIdempotent(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

func TestSendRightCloseAfterReceiverGone(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	s, err := p.MakeSender()
	require.NoError(t, err)

	// Kill the receive right first; releasing the send right then finds a
	// dead name, which is a documented success path.
	require.NoError(t, p.Close())
	assert.NoError(t, s.Close())
}
