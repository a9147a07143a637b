package livelink

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	pkgerrors "braincore/pkg/errors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512KB

	// Send buffer size
	sendBufferSize = 256

	// Delay before the automatic list-brains query after connecting
	listBrainsDelay = 100 * time.Millisecond
)

// Client maintains one live link connection and the local mirror of
// the remote brain's state. Inbound messages are handled one at a
// time on the read loop; there is no reconnect on drop.
type Client struct {
	endpoint string
	logger   *zap.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	state     *BrainState
	pending   map[string]chan Envelope

	send chan []byte
	done chan struct{}

	// OnQueryReply, when set, receives query replies such as brain
	// listings; the client itself only logs them.
	OnQueryReply func(Envelope)

	// OnThought, when set, is called for every thought stream update
	OnThought func(count int, at time.Time)
}

// NewClient creates a live link client for the given endpoint
func NewClient(endpoint string, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		logger:   logger,
		pending:  make(map[string]chan Envelope),
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Connect dials the endpoint and starts the read and write loops.
// After a short fixed delay the client issues a list-brains query on
// its own.
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return pkgerrors.NewNetworkError("failed to dial live link", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	if c.state != nil {
		c.state.LastError = ""
	}
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	time.AfterFunc(listBrainsDelay, c.ListBrains)

	c.logger.Info("Live link connected", zap.String("endpoint", c.endpoint))
	return nil
}

// Connected reports whether the link is open
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// State returns a copy of the mirrored brain state, nil when no brain
// has been mirrored yet
func (c *Client) State() *BrainState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Close tears the connection down. There is no automatic reconnect.
// A transport-initiated drop only flips connected; Close still has to
// release the pumps and any waiting Request.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.connected = false
	close(c.done)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Send stamps and transmits an envelope. Sending on a closed link is
// a recoverable no-op: it logs and drops, never errors.
func (c *Client) Send(msg Envelope) {
	c.mu.RLock()
	connected := c.connected
	if msg.BrainID == "" && c.state != nil {
		msg.BrainID = c.state.ID
	}
	c.mu.RUnlock()

	msg = stamp(msg, time.Now())

	if !connected {
		c.logger.Warn("Dropping message, live link not connected",
			zap.String("type", string(msg.Type)),
		)
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to marshal envelope", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("Send buffer full, dropping message",
			zap.String("type", string(msg.Type)),
		)
	}
}

// Request sends an envelope and waits for the reply that echoes its
// id in inReplyTo. Replies without inReplyTo never resolve a request;
// they only flow through the type dispatch.
func (c *Client) Request(ctx context.Context, msg Envelope) (Envelope, error) {
	if !c.Connected() {
		return Envelope{}, pkgerrors.NewNetworkError("live link not connected", nil)
	}

	msg = stamp(msg, time.Now())
	reply := make(chan Envelope, 1)

	c.mu.Lock()
	c.pending[msg.ID] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
	}()

	c.Send(msg)

	select {
	case resp := <-reply:
		return resp, nil
	case <-ctx.Done():
		return Envelope{}, pkgerrors.NewNetworkError("live link request timed out", ctx.Err())
	case <-c.done:
		return Envelope{}, pkgerrors.NewNetworkError("live link closed", nil)
	}
}

// readPump reads inbound envelopes until the connection drops.
// Handlers run sequentially here, so mirror mutations never race.
func (c *Client) readPump() {
	defer c.markDisconnected()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Live link read error", zap.Error(err))
				c.setError(err.Error())
			}
			return
		}
		c.handleRaw(data)
	}
}

// writePump writes outbound messages and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn("Live link write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// handleRaw parses and dispatches one inbound message. Malformed
// messages are logged and skipped; the loop keeps running.
func (c *Client) handleRaw(data []byte) {
	var msg Envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn("Malformed live link message", zap.Error(err))
		return
	}
	c.dispatch(msg)
}

func (c *Client) dispatch(msg Envelope) {
	if msg.InReplyTo != "" {
		c.resolvePending(msg)
	}

	switch msg.Type {
	case TypeEvent:
		c.handleEvent(msg)
	case TypeCommand:
		c.handleCommandReply(msg)
	case TypeQuery:
		c.handleQueryReply(msg)
	case TypeStream:
		c.handleStream(msg)
	default:
		c.logger.Debug("Ignoring unknown message type",
			zap.String("type", string(msg.Type)),
		)
	}
}

func (c *Client) resolvePending(msg Envelope) {
	c.mu.Lock()
	reply, ok := c.pending[msg.InReplyTo]
	if ok {
		delete(c.pending, msg.InReplyTo)
	}
	c.mu.Unlock()

	if ok {
		reply <- msg
	}
}

func (c *Client) handleEvent(msg Envelope) {
	event := payloadString(msg.Payload, "event")
	switch event {
	case EventConnected:
		c.logger.Info("Brain reports connected", zap.String("brainID", msg.BrainID))
		c.withState(func(s *BrainState) {
			s.Status = StatusActive
			s.LastError = ""
		})
	case EventFlowChanged:
		c.applyFlowChange(msg.Payload)
	case EventNodeExecuted:
		c.logger.Debug("Node executed",
			zap.String("nodeID", payloadString(msg.Payload, "nodeId")),
		)
	case EventError:
		message := payloadString(msg.Payload, "message")
		c.logger.Warn("Brain reported error", zap.String("message", message))
		c.setError(message)
	default:
		c.logger.Debug("Ignoring unknown event", zap.String("event", event))
	}
}

// applyFlowChange replaces the mirrored nodes, edges and current flow
func (c *Client) applyFlowChange(payload map[string]interface{}) {
	var change struct {
		FlowID string     `json:"flowId"`
		Nodes  []FlowNode `json:"nodes"`
		Edges  []FlowEdge `json:"edges"`
	}
	if err := decodePayload(payload, &change); err != nil {
		c.logger.Warn("Malformed flow-changed payload", zap.Error(err))
		return
	}

	c.withState(func(s *BrainState) {
		s.CurrentFlowID = change.FlowID
		s.Nodes = change.Nodes
		s.Edges = change.Edges
	})
}

// handleCommandReply rebuilds the full mirror when a command reply
// carries the brain's current flow
func (c *Client) handleCommandReply(msg Envelope) {
	if _, ok := msg.Payload["currentFlow"]; !ok {
		return
	}

	var snapshot brainSnapshot
	if err := decodePayload(msg.Payload, &snapshot); err != nil {
		c.logger.Warn("Malformed command reply payload", zap.Error(err))
		return
	}

	state := &BrainState{
		ID:           snapshot.ID,
		Status:       BrainStatus(snapshot.State),
		ThoughtCount: snapshot.ThoughtCount,
	}
	if snapshot.CurrentFlow != nil {
		state.CurrentFlowID = snapshot.CurrentFlow.ID
		state.Nodes = snapshot.CurrentFlow.Nodes
		state.Edges = snapshot.CurrentFlow.Edges
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	c.logger.Info("Mirrored brain state",
		zap.String("brainID", state.ID),
		zap.String("status", string(state.Status)),
		zap.String("flowID", state.CurrentFlowID),
	)
}

// handleQueryReply surfaces brain listings and stats to the caller;
// no mirror mutation happens here
func (c *Client) handleQueryReply(msg Envelope) {
	c.logger.Info("Query reply",
		zap.String("query", payloadString(msg.Payload, "query")),
	)
	if c.OnQueryReply != nil {
		c.OnQueryReply(msg)
	}
}

func (c *Client) handleStream(msg Envelope) {
	if payloadString(msg.Payload, "stream") != StreamThought {
		return
	}

	var update struct {
		Data struct {
			Count     int   `json:"count"`
			Timestamp int64 `json:"timestamp"`
		} `json:"data"`
	}
	if err := decodePayload(msg.Payload, &update); err != nil {
		c.logger.Warn("Malformed thought stream payload", zap.Error(err))
		return
	}

	at := time.UnixMilli(update.Data.Timestamp)
	c.withState(func(s *BrainState) {
		s.ThoughtCount = update.Data.Count
		s.LastThought = at
	})

	if c.OnThought != nil {
		c.OnThought(update.Data.Count, at)
	}
}

// withState mutates the mirror under lock, skipping silently when no
// brain is mirrored yet
func (c *Client) withState(fn func(*BrainState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return
	}
	fn(c.state)
}

func (c *Client) setError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		c.state = &BrainState{}
	}
	c.state.Status = StatusError
	c.state.LastError = message
}

func (c *Client) markDisconnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func decodePayload(payload map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
