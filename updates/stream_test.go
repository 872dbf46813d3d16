package updates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotdgram/mtclient/peer"
	"github.com/gotdgram/mtclient/session"
	"github.com/gotdgram/mtclient/tl"
)

// fakeStore is a minimal in-memory session.Store, tracking only what
// stream.go's persistence calls touch.
type fakeStore struct {
	mu    sync.Mutex
	state session.UpdatesState
	user  session.UserInfo
}

func (s *fakeStore) HomeDcID() int32                              { return 2 }
func (s *fakeStore) SetHomeDcID(id int32)                         {}
func (s *fakeStore) DcOption(dcID int32) (session.DcOption, bool) { return session.DcOption{}, false }
func (s *fakeStore) SetDcOption(opt session.DcOption)             {}
func (s *fakeStore) Peer(id peer.ID) (peer.Info, bool)            { return peer.Info{}, false }
func (s *fakeStore) CachePeer(info peer.Info)                     {}

func (s *fakeStore) UserInfo() session.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *fakeStore) SetUserInfo(info session.UserInfo) {
	s.mu.Lock()
	s.user = info
	s.mu.Unlock()
}

func (s *fakeStore) UpdatesState() (session.UpdatesState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *fakeStore) SetUpdateState(u session.UpdateState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch u.Kind {
	case session.StateAll:
		s.state.Pts, s.state.Qts, s.state.Date, s.state.Seq = u.Pts, u.Qts, u.Date, u.Seq
	case session.StatePrimary:
		s.state.Pts, s.state.Date, s.state.Seq = u.Pts, u.Date, u.Seq
	case session.StateSecondary:
		s.state.Qts = u.Qts
	}
	return nil
}

var _ session.Store = (*fakeStore)(nil)

type recordingLogger struct {
	mu    sync.Mutex
	debug int
}

func (l *recordingLogger) Error(err error, format string, args ...interface{}) {}
func (l *recordingLogger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	l.debug++
	l.mu.Unlock()
}

func TestSequencerDeliversInOrderUpdates(t *testing.T) {
	store := &fakeStore{}
	in := make(chan []byte, 4)
	seq, err := New(in, store, peer.NewMap(), nil, false, &recordingLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go seq.Run(ctx)
	defer seq.Close()

	in <- encodeForTest(t, tl.UpdateShortMessage{ID: 1, UserID: 2, Message: "hi", Pts: 1, PtsCount: 1, Date: 100})

	select {
	case u := <-seq.Updates():
		assert.Equal(t, AccountWide(), u.Entry)
		msg, ok := u.Body.(tl.UpdateShortMessage)
		require.True(t, ok)
		assert.Equal(t, int32(1), msg.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivered update")
	}

	state, err := store.UpdatesState()
	require.NoError(t, err)
	assert.Equal(t, int32(1), state.Pts)
}

func TestSequencerBuffersPossibleGapAcrossTwoRawPayloads(t *testing.T) {
	store := &fakeStore{}
	in := make(chan []byte, 4)
	seq, err := New(in, store, peer.NewMap(), nil, false, &recordingLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go seq.Run(ctx)
	defer seq.Close()

	// pts jumps straight to 3 (needs count 2, i.e. local_pts 1) — buffered
	// as a possible gap rather than delivered immediately.
	in <- encodeForTest(t, tl.UpdateShortMessage{ID: 1, UserID: 2, Message: "second", Pts: 3, PtsCount: 2, Date: 100})
	select {
	case u := <-seq.Updates():
		t.Fatalf("update delivered before the gap closed: %+v", u)
	case <-time.After(100 * time.Millisecond):
	}

	// pts 1 (count 1) closes the gap; both must now drain in order.
	in <- encodeForTest(t, tl.UpdateShortMessage{ID: 0, UserID: 2, Message: "first", Pts: 1, PtsCount: 1, Date: 100})

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case u := <-seq.Updates():
			got = append(got, u.Body.(tl.UpdateShortMessage).Message)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for update %d", i)
		}
	}
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestWarnDroppedIsRateLimited(t *testing.T) {
	log := &recordingLogger{}
	s := &Sequencer{log: log}

	s.warnDropped()
	s.warnDropped()
	s.warnDropped()

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Equal(t, 1, log.debug, "repeated drops within the warning window must log only once")
}
