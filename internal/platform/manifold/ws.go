package manifold

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWSURL is the production Manifold realtime endpoint.
const DefaultWSURL = "wss://api.manifold.markets/ws"

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// readWait is how long the connection may stay silent before the read
	// loop treats it as dead. Server acks and broadcasts reset it.
	readWait = 60 * time.Second

	// pingPeriod sends protocol pings at this interval. Must be less than
	// readWait.
	pingPeriod = (readWait * 9) / 10

	// reconnectDelay is the base delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second

	// maxReconnectDelay caps the exponential backoff for reconnection.
	maxReconnectDelay = 60 * time.Second
)

// Well-known broadcast topics. Contract-scoped topics are built with
// ContractTopic and friends.
const (
	TopicNewBet      = "global/new-bet"
	TopicNewContract = "global/new-contract"
	TopicNewComment  = "global/new-comment"
	TopicNewSubsidy  = "global/new-subsidy"
)

// ContractTopic is the update topic for a single market.
func ContractTopic(contractID string) string {
	return "contract/" + contractID
}

// ContractNewBetTopic is the new-bet topic for a single market.
func ContractNewBetTopic(contractID string) string {
	return "contract/" + contractID + "/new-bet"
}

// wsCommand is a client-to-server message. Every command carries a txid the
// server echoes back in its ack.
type wsCommand struct {
	Type   string   `json:"type"`
	TxID   int64    `json:"txid"`
	Topics []string `json:"topics,omitempty"`
}

// WSMessage is a server-to-client message. Broadcasts carry a topic and an
// opaque payload; acks carry the txid of the command they confirm.
type WSMessage struct {
	Type  string          `json:"type"`
	TxID  int64           `json:"txid,omitempty"`
	Topic string          `json:"topic,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// BroadcastHandler is called for every broadcast received on a subscribed
// topic. The payload is passed through undecoded.
type BroadcastHandler func(topic string, data json.RawMessage)

// WSClient is a client for the Manifold realtime broadcast feed. It manages
// the connection lifecycle, subscriptions, and dispatches broadcasts to
// registered handlers. Like the REST client it never interprets payloads.
type WSClient struct {
	wsURL string
	conn  *websocket.Conn

	// connDone is closed when conn is superseded or shut down, stopping the
	// loops tied to it.
	connDone chan struct{}

	mu     sync.RWMutex
	closed bool
	txid   int64

	// Topics to restore on reconnect.
	topics map[string]struct{}

	handlers  []BroadcastHandler
	handlerMu sync.RWMutex

	// done is closed when the client is shut down.
	done chan struct{}
}

// NewWSClient creates a realtime client for the given endpoint; empty means
// DefaultWSURL.
func NewWSClient(wsURL string) *WSClient {
	if wsURL == "" {
		wsURL = DefaultWSURL
	}
	return &WSClient{
		wsURL:  wsURL,
		topics: make(map[string]struct{}),
		done:   make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read and ping
// loops. A previous connection and its loops are torn down first, so calling
// Connect on a live client swaps the connection rather than leaking it.
// Previously subscribed topics are re-subscribed.
func (w *WSClient) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("manifold/ws: client closed: %w", ErrTransport)
	}

	if w.connDone != nil {
		close(w.connDone)
		w.connDone = nil
	}
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("manifold/ws: connect: %w: %w", ErrTransport, err)
	}

	connDone := make(chan struct{})
	w.conn = conn
	w.connDone = connDone
	w.conn.SetReadDeadline(time.Now().Add(readWait))

	go w.readLoop(conn, connDone)
	go w.pingLoop(conn, connDone)

	if len(w.topics) > 0 {
		topics := make([]string, 0, len(w.topics))
		for t := range w.topics {
			topics = append(topics, t)
		}
		if err := w.sendCommand(conn, wsCommand{Type: "subscribe", TxID: w.nextTxID(), Topics: topics}); err != nil {
			return fmt.Errorf("manifold/ws: restore subscriptions: %w", err)
		}
	}

	return nil
}

// Subscribe subscribes to the given broadcast topics.
func (w *WSClient) Subscribe(ctx context.Context, topics ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return fmt.Errorf("manifold/ws: not connected")
	}

	if err := w.sendCommand(w.conn, wsCommand{Type: "subscribe", TxID: w.nextTxID(), Topics: topics}); err != nil {
		return fmt.Errorf("manifold/ws: subscribe: %w", err)
	}
	for _, t := range topics {
		w.topics[t] = struct{}{}
	}
	return nil
}

// Unsubscribe unsubscribes from the given broadcast topics.
func (w *WSClient) Unsubscribe(ctx context.Context, topics ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return fmt.Errorf("manifold/ws: not connected")
	}

	if err := w.sendCommand(w.conn, wsCommand{Type: "unsubscribe", TxID: w.nextTxID(), Topics: topics}); err != nil {
		return fmt.Errorf("manifold/ws: unsubscribe: %w", err)
	}
	for _, t := range topics {
		delete(w.topics, t)
	}
	return nil
}

// OnBroadcast registers a handler called for every broadcast message.
func (w *WSClient) OnBroadcast(handler BroadcastHandler) {
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Close shuts down the connection and stops the loops.
func (w *WSClient) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)

	if w.connDone != nil {
		close(w.connDone)
		w.connDone = nil
	}
	if w.conn != nil {
		_ = w.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return w.conn.Close()
	}
	return nil
}

// nextTxID returns a fresh command ID. Caller must hold w.mu.
func (w *WSClient) nextTxID() int64 {
	w.txid++
	return w.txid
}

// sendCommand sends a JSON command over conn. Caller must hold w.mu.
func (w *WSClient) sendCommand(conn *websocket.Conn, cmd wsCommand) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads messages from its connection and dispatches broadcasts. On
// disconnect it hands off to reconnect, which restarts the loops. The loop is
// bound to one connection; connDone stops it when that connection is replaced.
func (w *WSClient) readLoop(conn *websocket.Conn, connDone chan struct{}) {
	for {
		select {
		case <-w.done:
			return
		case <-connDone:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.done:
				return
			case <-connDone:
				return
			default:
			}
			w.reconnect()
			return
		}

		conn.SetReadDeadline(time.Now().Add(readWait))
		w.handleMessage(message)
	}
}

// pingLoop sends protocol-level pings on its connection; the server's ack
// resets the read deadline in readLoop. Stops with its connection.
func (w *WSClient) pingLoop(conn *websocket.Conn, connDone chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-connDone:
			return
		case <-ticker.C:
			w.mu.Lock()
			err := w.sendCommand(conn, wsCommand{Type: "ping", TxID: w.nextTxID()})
			w.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// handleMessage decodes one server message and fans broadcasts out to the
// registered handlers. Acks are dropped.
func (w *WSClient) handleMessage(raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if msg.Type != "broadcast" {
		return
	}

	w.handlerMu.RLock()
	handlers := w.handlers
	w.handlerMu.RUnlock()

	for _, h := range handlers {
		h(msg.Topic, msg.Data)
	}
}

// reconnect re-establishes the connection with exponential backoff until it
// succeeds or the client is closed.
func (w *WSClient) reconnect() {
	delay := reconnectDelay
	for {
		select {
		case <-w.done:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		err := w.Connect(ctx)
		cancel()
		if err == nil {
			return
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}
