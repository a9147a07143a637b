package livelink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient() *Client {
	return NewClient("ws://localhost:0/link", zap.NewNop())
}

func TestSend_BeforeConnectDropsSilently(t *testing.T) {
	client := newTestClient()

	// must not panic or block
	client.Send(Envelope{Type: TypeCommand, Payload: map[string]interface{}{"command": "noop"}})
	client.SubscribeToThoughts()
	client.NavigateToFlow("flow-1")

	assert.False(t, client.Connected())
	assert.Len(t, client.send, 0)
}

func TestSaveFlow_WithoutMirrorDropsSilently(t *testing.T) {
	client := newTestClient()

	client.SaveFlow()

	assert.Len(t, client.send, 0)
}

func TestRequest_NotConnected(t *testing.T) {
	client := newTestClient()

	_, err := client.Request(context.Background(), Envelope{Type: TypeQuery})

	assert.Error(t, err)
}

func TestHandleRaw_MalformedJSONIsSkipped(t *testing.T) {
	client := newTestClient()

	// must not panic; the read loop treats this as a skipped message
	client.handleRaw([]byte("{not json"))
	client.handleRaw([]byte(""))

	assert.Nil(t, client.State())
}

func TestDispatch_CommandReplyMirrorsBrainState(t *testing.T) {
	client := newTestClient()

	client.dispatch(Envelope{
		ID:   "m1",
		Type: TypeCommand,
		Payload: map[string]interface{}{
			"id":           "brain-7",
			"state":        "active",
			"thoughtCount": float64(42),
			"currentFlow": map[string]interface{}{
				"id": "flow-main",
				"nodes": []interface{}{
					map[string]interface{}{"id": "n1", "type": "input"},
					map[string]interface{}{"id": "n2", "type": "output"},
				},
				"edges": []interface{}{
					map[string]interface{}{"id": "e1", "source": "n1", "target": "n2"},
				},
			},
		},
	})

	state := client.State()
	require.NotNil(t, state)
	assert.Equal(t, "brain-7", state.ID)
	assert.Equal(t, StatusActive, state.Status)
	assert.Equal(t, "flow-main", state.CurrentFlowID)
	assert.Equal(t, 42, state.ThoughtCount)
	assert.Len(t, state.Nodes, 2)
	assert.Len(t, state.Edges, 1)
}

func TestDispatch_CommandReplyWithoutFlowIsIgnored(t *testing.T) {
	client := newTestClient()

	client.dispatch(Envelope{
		Type:    TypeCommand,
		Payload: map[string]interface{}{"ok": true},
	})

	assert.Nil(t, client.State())
}

func TestDispatch_ThoughtStreamUpdatesMirror(t *testing.T) {
	client := newTestClient()
	client.state = &BrainState{ID: "brain-7", Status: StatusActive}

	var gotCount int
	var gotAt time.Time
	client.OnThought = func(count int, at time.Time) {
		gotCount = count
		gotAt = at
	}

	client.dispatch(Envelope{
		Type: TypeStream,
		Payload: map[string]interface{}{
			"stream": "thought",
			"data": map[string]interface{}{
				"count":     float64(7),
				"timestamp": float64(1700000000000),
			},
		},
	})

	state := client.State()
	require.NotNil(t, state)
	assert.Equal(t, 7, state.ThoughtCount)
	assert.Equal(t, time.UnixMilli(1700000000000), state.LastThought)
	assert.Equal(t, 7, gotCount)
	assert.Equal(t, time.UnixMilli(1700000000000), gotAt)
}

func TestDispatch_ThoughtStreamWithoutMirrorStillNotifies(t *testing.T) {
	client := newTestClient()

	called := false
	client.OnThought = func(count int, at time.Time) { called = true }

	client.dispatch(Envelope{
		Type: TypeStream,
		Payload: map[string]interface{}{
			"stream": "thought",
			"data":   map[string]interface{}{"count": float64(1), "timestamp": float64(0)},
		},
	})

	assert.Nil(t, client.State())
	assert.True(t, called)
}

func TestDispatch_OtherStreamsAreIgnored(t *testing.T) {
	client := newTestClient()
	client.state = &BrainState{ThoughtCount: 3}

	client.dispatch(Envelope{
		Type:    TypeStream,
		Payload: map[string]interface{}{"stream": "metrics", "data": map[string]interface{}{"count": float64(99)}},
	})

	assert.Equal(t, 3, client.State().ThoughtCount)
}

func TestDispatch_FlowChangedReplacesGraph(t *testing.T) {
	client := newTestClient()
	client.state = &BrainState{
		ID:            "brain-7",
		CurrentFlowID: "flow-old",
		Nodes:         []FlowNode{{ID: "old-1"}, {ID: "old-2"}},
		Edges:         []FlowEdge{{ID: "old-e"}},
	}

	client.dispatch(Envelope{
		Type: TypeEvent,
		Payload: map[string]interface{}{
			"event":  "flow-changed",
			"flowId": "flow-new",
			"nodes":  []interface{}{map[string]interface{}{"id": "n1"}},
			"edges":  []interface{}{},
		},
	})

	state := client.State()
	assert.Equal(t, "flow-new", state.CurrentFlowID)
	require.Len(t, state.Nodes, 1)
	assert.Equal(t, "n1", state.Nodes[0].ID)
	assert.Empty(t, state.Edges)
}

func TestDispatch_ConnectedEventActivatesMirror(t *testing.T) {
	client := newTestClient()
	client.state = &BrainState{ID: "brain-7", Status: StatusInitializing, LastError: "old"}

	client.dispatch(Envelope{
		Type:    TypeEvent,
		Payload: map[string]interface{}{"event": "connected"},
	})

	state := client.State()
	assert.Equal(t, StatusActive, state.Status)
	assert.Empty(t, state.LastError)
}

func TestDispatch_ErrorEventWithoutMirror(t *testing.T) {
	client := newTestClient()

	client.dispatch(Envelope{
		Type:    TypeEvent,
		Payload: map[string]interface{}{"event": "error", "message": "flow not found"},
	})

	state := client.State()
	require.NotNil(t, state)
	assert.Equal(t, StatusError, state.Status)
	assert.Equal(t, "flow not found", state.LastError)
}

func TestRequest_ResolvedByInReplyTo(t *testing.T) {
	// Arrange: pretend the link is up so Send buffers instead of dropping
	client := newTestClient()
	client.connected = true

	go func() {
		// wait for the outbound envelope, then answer it
		data := <-client.send
		var sent Envelope
		if err := json.Unmarshal(data, &sent); err != nil {
			return
		}

		client.dispatch(Envelope{
			ID:        "reply-1",
			Type:      TypeQuery,
			InReplyTo: sent.ID,
			Payload:   map[string]interface{}{"query": "list-brains", "brains": []interface{}{}},
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Act
	reply, err := client.Request(ctx, Envelope{
		Type:    TypeQuery,
		Payload: map[string]interface{}{"query": "list-brains"},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "reply-1", reply.ID)
	assert.Equal(t, "list-brains", reply.Payload["query"])
}

func TestRequest_TimesOut(t *testing.T) {
	client := newTestClient()
	client.connected = true

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Request(ctx, Envelope{Type: TypeQuery})

	assert.Error(t, err)

	// the pending slot must be cleaned up
	client.mu.Lock()
	assert.Empty(t, client.pending)
	client.mu.Unlock()
}

func TestDispatch_UncorrelatedReplyStillTypeDispatches(t *testing.T) {
	client := newTestClient()

	got := make(chan Envelope, 1)
	client.OnQueryReply = func(msg Envelope) { got <- msg }

	// no inReplyTo: nothing pending resolves, the type handler still runs
	client.dispatch(Envelope{
		ID:      "q1",
		Type:    TypeQuery,
		Payload: map[string]interface{}{"query": "list-brains"},
	})

	select {
	case msg := <-got:
		assert.Equal(t, "q1", msg.ID)
	default:
		t.Fatal("query reply callback not invoked")
	}
}

func TestConnect_IssuesListBrainsQuery(t *testing.T) {
	// Arrange: a server that records the first envelope it receives
	upgrader := websocket.Upgrader{}
	received := make(chan Envelope, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg Envelope
		if err := conn.ReadJSON(&msg); err == nil {
			received <- msg
		}
	}))
	defer srv.Close()

	client := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), zap.NewNop())

	// Act
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	// Assert: the automatic list-brains query arrives shortly after connect
	select {
	case msg := <-received:
		assert.Equal(t, TypeQuery, msg.Type)
		assert.Equal(t, "list-brains", msg.Payload["query"])
		assert.NotEmpty(t, msg.ID)
		assert.NotZero(t, msg.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("no query received over the link")
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	client := newTestClient()

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestClose_AfterTransportDropStillTearsDown(t *testing.T) {
	// a read failure flips connected off before anyone calls Close
	client := newTestClient()
	client.connected = true
	client.markDisconnected()

	require.NoError(t, client.Close())

	select {
	case <-client.done:
	default:
		t.Fatal("done channel not closed")
	}
}

func TestRequest_UnblocksWhenLinkCloses(t *testing.T) {
	client := newTestClient()
	client.connected = true

	go func() {
		time.Sleep(20 * time.Millisecond)
		client.markDisconnected()
		client.Close()
	}()

	_, err := client.Request(context.Background(), Envelope{Type: TypeQuery})

	assert.Error(t, err)
}

func TestStamp_GeneratesIDAndPreservesExplicitOne(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	stamped := stamp(Envelope{Type: TypeQuery}, now)
	assert.NotEmpty(t, stamped.ID)
	assert.Equal(t, int64(1700000000000), stamped.Timestamp)

	explicit := stamp(Envelope{ID: "keep-me"}, now)
	assert.Equal(t, "keep-me", explicit.ID)
}
