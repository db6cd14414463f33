package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rtlab/ba"
)

func TestActivateArmsTimerOnlyWithTimeout(t *testing.T) {
	s := NewStream(peerAddr, 2)

	s.mu.Lock()
	s.activate(&s.rxAdmitted, 0, func() { t.Error("fired without timeout") })
	require.True(t, s.rxAdmitted.valid)
	require.Nil(t, s.rxAdmitted.timer)
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
}

func TestDeactivateCancelsTimer(t *testing.T) {
	s := NewStream(peerAddr, 2)
	fired := make(chan struct{}, 1)

	s.mu.Lock()
	s.activate(&s.rxAdmitted, 10*time.Millisecond, func() { fired <- struct{}{} })
	s.deactivate(&s.rxAdmitted)
	require.False(t, s.rxAdmitted.valid)
	require.Nil(t, s.rxAdmitted.timer)
	s.mu.Unlock()

	select {
	case <-fired:
		t.Fatal("callback ran after deactivate")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeactivateIdempotent(t *testing.T) {
	s := NewStream(peerAddr, 2)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivate(&s.txPending)
	s.deactivate(&s.txPending)
	require.False(t, s.txPending.valid)
}

func TestLateCallbackSeesDeactivation(t *testing.T) {
	s := NewStream(peerAddr, 2)
	fired := make(chan struct{}, 1)

	s.mu.Lock()
	s.activate(&s.rxAdmitted, time.Millisecond, func() { fired <- struct{}{} })
	// Hold the lock past the timer deadline so the callback is already
	// in flight, then deactivate before releasing it.
	time.Sleep(10 * time.Millisecond)
	s.deactivate(&s.rxAdmitted)
	s.mu.Unlock()

	select {
	case <-fired:
		t.Fatal("in-flight callback acted on a deactivated record")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRearmReplacesTimer(t *testing.T) {
	s := NewStream(peerAddr, 2)
	var first, second int
	firedSecond := make(chan struct{}, 1)

	s.mu.Lock()
	s.activate(&s.rxAdmitted, 50*time.Millisecond, func() { first++ })
	s.activate(&s.rxAdmitted, 10*time.Millisecond, func() { second++; firedSecond <- struct{}{} })
	s.mu.Unlock()

	<-firedSecond
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Equal(t, 0, first)
	require.Equal(t, 1, second)
}

func TestResetClearsEverything(t *testing.T) {
	s := NewStream(peerAddr, 2)

	s.mu.Lock()
	s.txPending.dialogToken = 9
	s.txPending.timeout = 77
	s.activate(&s.txPending, time.Minute, func() {})
	s.addBaInProgress = true
	s.addBaDelayed = true
	s.usingBlockAck = true
	s.txSeq = 42
	s.mu.Unlock()

	s.Reset()

	require.False(t, s.TxPending().Valid)
	require.Zero(t, s.TxPending().DialogToken)
	require.Zero(t, s.TxPending().TimeoutTU)
	require.False(t, s.AddBaInProgress())
	require.False(t, s.AddBaDelayed())
	require.False(t, s.UsingBlockAck())
	require.Zero(t, s.TxSequence())
}

func TestTableLookup(t *testing.T) {
	tbl := NewTable()

	_, ok := tbl.Lookup(peerAddr, 3, ba.RxDirection, false)
	require.False(t, ok)

	s, ok := tbl.Lookup(peerAddr, 3, ba.RxDirection, true)
	require.True(t, ok)

	again, ok := tbl.Lookup(peerAddr, 3, ba.TxDirection, false)
	require.True(t, ok)
	require.True(t, s == again)

	// Different TID is a different stream.
	other, _ := tbl.Lookup(peerAddr, 4, ba.RxDirection, true)
	require.False(t, s == other)

	tbl.Drop(peerAddr, 3)
	_, ok = tbl.Lookup(peerAddr, 3, ba.RxDirection, false)
	require.False(t, ok)
}

func TestTableSnapshot(t *testing.T) {
	tbl := NewTable()
	s, _ := tbl.Lookup(peerAddr, 3, ba.RxDirection, true)

	require.Empty(t, tbl.Snapshot())

	s.mu.Lock()
	s.rxAdmitted.dialogToken = 5
	s.rxAdmitted.params.SetBufferSize(32)
	s.activate(&s.rxAdmitted, 0, nil)
	s.mu.Unlock()

	snap := tbl.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, peerAddr.String(), snap[0].Peer)
	require.Equal(t, uint8(3), snap[0].TID)
	require.Equal(t, "rx", snap[0].Direction)
	require.Equal(t, uint8(5), snap[0].DialogToken)
	require.Equal(t, uint16(32), snap[0].BufferSize)
}
