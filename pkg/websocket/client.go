// Package websocket streams real-time market events: implied-probability
// moves, trades, liquidity changes and resolutions.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SubscriptionMessage is sent after connecting to select markets.
type SubscriptionMessage struct {
	Type      string   `json:"type"`
	MarketIDs []string `json:"market_ids"`
}

// ProbabilityUpdate is emitted when a pool's reserves move.
type ProbabilityUpdate struct {
	EventType      string  `json:"event_type"` // "probability"
	MarketID       string  `json:"market_id"`
	YesProbability float64 `json:"yes_probability"`
	YesReserve     string  `json:"yes_reserve"`
	NoReserve      string  `json:"no_reserve"`
	Timestamp      string  `json:"timestamp"`
}

// TradeEvent is emitted for each buy or sell against a pool.
type TradeEvent struct {
	EventType string `json:"event_type"` // "trade"
	MarketID  string `json:"market_id"`
	Trader    string `json:"trader"`
	Outcome   string `json:"outcome"` // YES/NO
	Side      string `json:"side"`    // buy/sell
	UsdcIn    string `json:"usdc_in,omitempty"`
	UsdcOut   string `json:"usdc_out,omitempty"`
	Shares    string `json:"shares"`
	Timestamp string `json:"timestamp"`
}

// LiquidityEvent is emitted when liquidity is added or removed.
type LiquidityEvent struct {
	EventType string `json:"event_type"` // "liquidity"
	MarketID  string `json:"market_id"`
	Provider  string `json:"provider"`
	Direction string `json:"direction"` // add/remove
	Usdc      string `json:"usdc"`
	LpShares  string `json:"lp_shares"`
	Timestamp string `json:"timestamp"`
}

// ResolutionEvent is emitted once when a market resolves.
type ResolutionEvent struct {
	EventType string `json:"event_type"` // "resolution"
	MarketID  string `json:"market_id"`
	Outcome   string `json:"outcome"` // YES/NO
	Timestamp string `json:"timestamp"`
}

// MessageHandler receives stream events. Methods are called from the read
// loop goroutine.
type MessageHandler interface {
	OnProbabilityUpdate(update *ProbabilityUpdate)
	OnTrade(event *TradeEvent)
	OnLiquidity(event *LiquidityEvent)
	OnResolution(event *ResolutionEvent)
	OnError(err error)
	OnConnect()
	OnDisconnect()
}

// Client is the market event stream client.
type Client struct {
	host        string
	conn        *websocket.Conn
	handler     MessageHandler
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	isConnected bool
	pingTicker  *time.Ticker
}

// NewClient creates a stream client. handler must not be nil.
func NewClient(host string, handler MessageHandler, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		host:    host,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SubscribeToMarkets connects and subscribes to events for the given
// market IDs.
func (c *Client) SubscribeToMarkets(marketIDs []string) error {
	if err := c.connect(); err != nil {
		return err
	}
	return c.subscribe(marketIDs)
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := url.Parse(c.host)
	if err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}
	u.Path = "/ws/markets"

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}

	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.isConnected = true

	go c.messageLoop(conn)
	c.startHeartbeat()

	if c.handler != nil {
		c.handler.OnConnect()
	}
	return nil
}

func (c *Client) subscribe(marketIDs []string) error {
	c.mu.RLock()
	if !c.isConnected || c.conn == nil {
		c.mu.RUnlock()
		return fmt.Errorf("client is not connected")
	}
	conn := c.conn
	c.mu.RUnlock()

	if marketIDs == nil {
		marketIDs = []string{}
	}
	msg := SubscriptionMessage{Type: "markets", MarketIDs: marketIDs}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription message: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
		return fmt.Errorf("failed to send subscription message: %w", err)
	}

	c.logger.Debug("subscribed to markets", zap.Strings("market_ids", marketIDs))
	return nil
}

func (c *Client) startHeartbeat() {
	// a reconnect replaces the heartbeat; stop the old ticker first
	if c.pingTicker != nil {
		c.pingTicker.Stop()
	}
	ticker := time.NewTicker(30 * time.Second)
	c.pingTicker = ticker
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				c.mu.RLock()
				conn := c.conn
				connected := c.isConnected
				c.mu.RUnlock()
				if !connected || conn == nil {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte("PING")); err != nil {
					c.logger.Warn("failed to send ping", zap.Error(err))
					if c.handler != nil {
						c.handler.OnError(err)
					}
				}
			}
		}
	}()
}

// messageLoop reads from one connection until it dies. A reconnect leaves
// the old loop draining a closed connection; it must not tear down state
// that now belongs to the replacement.
func (c *Client) messageLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()

		c.mu.Lock()
		current := c.conn == conn
		if current {
			c.conn = nil
			c.isConnected = false
		}
		c.mu.Unlock()

		if current && c.handler != nil {
			c.handler.OnDisconnect()
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, message, err := conn.ReadMessage()
			if err != nil {
				c.mu.RLock()
				current := c.conn == conn
				c.mu.RUnlock()
				if current && c.handler != nil {
					c.handler.OnError(fmt.Errorf("websocket read error: %w", err))
				}
				return
			}

			if string(message) == "PONG" {
				continue
			}

			c.dispatch(message)
		}
	}
}

// envelope peeks at the event type before full decoding
type envelope struct {
	EventType string `json:"event_type"`
}

func (c *Client) dispatch(message []byte) {
	if c.handler == nil {
		return
	}

	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.logger.Warn("unparseable stream message", zap.ByteString("message", message))
		return
	}

	switch env.EventType {
	case "probability":
		var update ProbabilityUpdate
		if err := json.Unmarshal(message, &update); err != nil {
			c.logger.Warn("failed to parse probability event", zap.Error(err))
			return
		}
		c.handler.OnProbabilityUpdate(&update)
	case "trade":
		var event TradeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			c.logger.Warn("failed to parse trade event", zap.Error(err))
			return
		}
		c.handler.OnTrade(&event)
	case "liquidity":
		var event LiquidityEvent
		if err := json.Unmarshal(message, &event); err != nil {
			c.logger.Warn("failed to parse liquidity event", zap.Error(err))
			return
		}
		c.handler.OnLiquidity(&event)
	case "resolution":
		var event ResolutionEvent
		if err := json.Unmarshal(message, &event); err != nil {
			c.logger.Warn("failed to parse resolution event", zap.Error(err))
			return
		}
		c.handler.OnResolution(&event)
	default:
		c.logger.Debug("unknown event type", zap.String("event_type", env.EventType))
	}
}

// IsConnected reports whether the stream is live.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// Close tears down the connection and stops the heartbeat.
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pingTicker != nil {
		c.pingTicker.Stop()
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.isConnected = false
		return err
	}
	return nil
}
