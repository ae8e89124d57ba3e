package signal

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingbing01121-art/live-test/internal/app"
	"github.com/bingbing01121-art/live-test/internal/config"
	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/protocol"
)

type mockConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (m *mockConn) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, 0, len(m.frames))
	for _, f := range m.frames {
		var v map[string]any
		require.NoError(t, json.Unmarshal(f, &v))
		out = append(out, v)
	}
	return out
}

func (m *mockConn) lastOf(t *testing.T, typ string) map[string]any {
	t.Helper()
	var last map[string]any
	for _, msg := range m.messages(t) {
		if msg["type"] == typ {
			last = msg
		}
	}
	require.NotNil(t, last, "no %s message sent", typ)
	return last
}

func newTestController() *Controller {
	cfg := &config.Config{
		ReadLimit:   32768,
		PingPeriod:  54 * time.Second,
		RejoinGrace: 20 * time.Second,
		KickDelay:   250 * time.Millisecond,
		ICEServers: []config.ICEServer{
			{URLs: []string{"stun:stun.example.org:3478"}},
		},
	}
	orch := &app.Orchestrator{
		Registry:  app.NewRegistry(),
		Rooms:     app.NewDirectory(),
		Sched:     core.WallClock{},
		Grace:     cfg.RejoinGrace,
		KickDelay: cfg.KickDelay,
	}
	return NewController(orch, cfg, app.NewAttemptLimiter(100, time.Minute))
}

func dial(ctl *Controller) (core.ConnID, *mockConn) {
	conn := &mockConn{}
	return ctl.Orch.Connect(conn), conn
}

func register(t *testing.T, ctl *Controller, cid core.ConnID, conn *mockConn, identity, username string) {
	t.Helper()
	ctl.handleMessage(cid, conn, []byte(`{"type":"register","identity":"`+identity+`","username":"`+username+`"}`))
	require.Equal(t, protocol.TypeRegistered, conn.lastOf(t, protocol.TypeRegistered)["type"])
}

func TestHandleRegister(t *testing.T) {
	ctl := newTestController()
	cid, conn := dial(ctl)

	ctl.handleMessage(cid, conn, []byte(`{"type":"register","identity":"c1","username":"alice"}`))

	msg := conn.lastOf(t, protocol.TypeRegistered)
	assert.Equal(t, "c1", msg["identity"])
	servers, ok := msg["iceServers"].([]any)
	require.True(t, ok)
	require.Len(t, servers, 1)
}

func TestHandleRegisterMissingFieldsDropped(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing identity", raw: `{"type":"register","username":"alice"}`},
		{name: "missing username", raw: `{"type":"register","identity":"c1"}`},
		{name: "empty payload", raw: `{"type":"register"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := newTestController()
			cid, conn := dial(ctl)
			ctl.handleMessage(cid, conn, []byte(tt.raw))
			assert.Empty(t, conn.messages(t), "validation failure must stay silent")
		})
	}
}

func TestHandleMalformedAndUnknown(t *testing.T) {
	ctl := newTestController()
	cid, conn := dial(ctl)

	ctl.handleMessage(cid, conn, []byte(`{not json`))
	ctl.handleMessage(cid, conn, []byte(`{"type":"no-such-thing"}`))
	assert.Empty(t, conn.messages(t))
}

func TestHandleCreateAndJoinRoom(t *testing.T) {
	ctl := newTestController()
	bcCid, bcConn := dial(ctl)
	vCid, vConn := dial(ctl)
	register(t, ctl, bcCid, bcConn, "bc1", "alice")
	register(t, ctl, vCid, vConn, "v1", "bob")

	ctl.handleMessage(bcCid, bcConn, []byte(`{"type":"create-room","roomName":"X","password":"pw"}`))
	created := bcConn.lastOf(t, protocol.TypeRoomCreated)
	roomID := created["roomId"].(string)
	require.NotEmpty(t, roomID)
	assert.Equal(t, "X", created["roomName"])

	ctl.handleMessage(vCid, vConn, []byte(`{"type":"join-room","roomId":"`+roomID+`","password":"wrong"}`))
	errMsg := vConn.lastOf(t, protocol.TypeError)
	assert.Equal(t, protocol.CodePasswordIncorrect, errMsg["code"])

	ctl.handleMessage(vCid, vConn, []byte(`{"type":"join-room","roomId":"ghost","password":""}`))
	errMsg = vConn.lastOf(t, protocol.TypeError)
	assert.Equal(t, protocol.CodeRoomNotFound, errMsg["code"])

	ctl.handleMessage(vCid, vConn, []byte(`{"type":"join-room","roomId":"`+roomID+`","password":"pw"}`))
	joined := vConn.lastOf(t, protocol.TypeJoinedRoom)
	assert.Equal(t, roomID, joined["roomId"])
	assert.Equal(t, "v1", bcConn.lastOf(t, protocol.TypeNewViewer)["viewerId"])
}

func TestHandleListRooms(t *testing.T) {
	ctl := newTestController()
	bcCid, bcConn := dial(ctl)
	register(t, ctl, bcCid, bcConn, "bc1", "alice")
	ctl.handleMessage(bcCid, bcConn, []byte(`{"type":"create-room","roomName":"X","password":"pw"}`))

	ctl.handleMessage(bcCid, bcConn, []byte(`{"type":"list-rooms"}`))
	list := bcConn.lastOf(t, protocol.TypeRoomList)
	rooms, ok := list["rooms"].([]any)
	require.True(t, ok)
	require.Len(t, rooms, 1)
	row := rooms[0].(map[string]any)
	assert.Equal(t, "alice", row["broadcasterName"])
	assert.Equal(t, true, row["isPasswordProtected"])
	_, leaked := row["password"]
	assert.False(t, leaked)
}

func TestHandleRejoinFailure(t *testing.T) {
	ctl := newTestController()
	cid, conn := dial(ctl)
	register(t, ctl, cid, conn, "bc1", "alice")

	ctl.handleMessage(cid, conn, []byte(`{"type":"rejoin-room","roomId":"ghost","roomName":"X"}`))
	msg := conn.lastOf(t, protocol.TypeRejoinFailed)
	assert.NotEmpty(t, msg["message"])
}

func TestHandleRelayPassthrough(t *testing.T) {
	ctl := newTestController()
	aCid, aConn := dial(ctl)
	bCid, bConn := dial(ctl)
	register(t, ctl, aCid, aConn, "A", "alice")
	register(t, ctl, bCid, bConn, "B", "bob")

	ctl.handleMessage(aCid, aConn, []byte(`{"type":"offer","targetId":"B","sdp":"v=0 blob","custom":42}`))

	msg := bConn.lastOf(t, protocol.TypeOffer)
	assert.Equal(t, "A", msg["senderId"])
	assert.Equal(t, "v=0 blob", msg["sdp"])
	assert.Equal(t, float64(42), msg["custom"])
	_, hasTarget := msg["targetId"]
	assert.False(t, hasTarget)
}

func TestHandlePing(t *testing.T) {
	ctl := newTestController()
	cid, conn := dial(ctl)
	ctl.handleMessage(cid, conn, []byte(`{"type":"ping"}`))
	assert.Equal(t, protocol.TypePong, conn.lastOf(t, protocol.TypePong)["type"])
}

func TestRateLimitedJoinAnswered(t *testing.T) {
	ctl := newTestController()
	ctl.Limiter = app.NewAttemptLimiter(1, time.Minute)
	cid, conn := dial(ctl)
	register(t, ctl, cid, conn, "v1", "bob")

	ctl.handleMessage(cid, conn, []byte(`{"type":"join-room","roomId":"ghost"}`))
	ctl.handleMessage(cid, conn, []byte(`{"type":"join-room","roomId":"ghost"}`))

	msg := conn.lastOf(t, protocol.TypeError)
	assert.Equal(t, protocol.CodeRateLimited, msg["code"])
}
