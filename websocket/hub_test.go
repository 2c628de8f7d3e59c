package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutiful/tutiful_backend/models"
)

type fakeConn struct {
	got    chan interface{}
	fail   bool
	closed chan struct{}
}

func newFakeConn(fail bool) *fakeConn {
	return &fakeConn{got: make(chan interface{}, 4), fail: fail, closed: make(chan struct{})}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.fail {
		return errors.New("broken pipe")
	}
	f.got <- v
	return nil
}

func (f *fakeConn) Close() error {
	close(f.closed)
	return nil
}

func startHub() *Hub {
	h := NewHub()
	go h.Run()
	return h
}

func TestHub_pushReachesRegisteredUser(t *testing.T) {
	h := startHub()
	user := uuid.New()
	conn := newFakeConn(false)
	h.Register <- &Client{UserID: user, Conn: conn}

	h.Push(models.Notification{UserID: uuid.New(), Title: "not for us"})
	h.Push(models.Notification{UserID: user, Title: "Lesson starts in 1 hour"})

	select {
	case v := <-conn.got:
		env, ok := v.(envelope)
		require.True(t, ok)
		assert.Equal(t, "notification", env.Type)
		assert.Equal(t, "Lesson starts in 1 hour", env.Data.(*models.Notification).Title)
	case <-time.After(time.Second):
		t.Fatal("notification was not delivered")
	}
	assert.True(t, h.Connected(user))

	h.Unregister <- &Client{UserID: user, Conn: conn}
	assert.Eventually(t, func() bool { return !h.Connected(user) }, time.Second, 10*time.Millisecond)
}

func TestHub_dropsBrokenConnection(t *testing.T) {
	h := startHub()
	user := uuid.New()
	conn := newFakeConn(true)
	h.Register <- &Client{UserID: user, Conn: conn}

	h.Push(models.Notification{UserID: user})

	select {
	case <-conn.closed:
	case <-time.After(time.Second):
		t.Fatal("broken connection was not closed")
	}
	assert.Eventually(t, func() bool { return !h.Connected(user) }, time.Second, 10*time.Millisecond)
}

func TestHub_newConnectionReplacesOld(t *testing.T) {
	h := startHub()
	user := uuid.New()
	first, second := newFakeConn(false), newFakeConn(false)

	h.Register <- &Client{UserID: user, Conn: first}
	h.Register <- &Client{UserID: user, Conn: second}

	select {
	case <-first.closed:
	case <-time.After(time.Second):
		t.Fatal("old connection was not closed")
	}

	// a late unregister of the old connection must not drop the new one
	h.Unregister <- &Client{UserID: user, Conn: first}
	h.Push(models.Notification{UserID: user})
	select {
	case <-second.got:
	case <-time.After(time.Second):
		t.Fatal("notification was not delivered to the new connection")
	}
}
