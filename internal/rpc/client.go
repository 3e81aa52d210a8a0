// Package rpc implements the kaspad node collaborator: a JSON-over-websocket
// RPC client used to list spendable UTXOs and submit finished transactions.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hashforge/kaspay/internal/payout"
	"github.com/hashforge/kaspay/internal/tx"
	"github.com/hashforge/kaspay/pkg/logging"
)

// Client errors.
var (
	ErrNotConnected = errors.New("node not connected")
	ErrNoUtxoIndex  = errors.New("node does not expose the UTXO index; restart kaspad with --utxoindex")
	ErrClosed       = errors.New("connection closed")
)

const defaultCallTimeout = 30 * time.Second

// Client is a kaspad wRPC client. It is safe for concurrent use.
type Client struct {
	url string
	log *logging.Logger

	conn      *websocket.Conn
	writeMu   sync.Mutex
	requestID atomic.Uint64

	pendingMu sync.Mutex
	pending   map[uint64]chan *envelope
	closed    chan struct{}
	closeOnce sync.Once
}

// envelope is the wire framing shared by requests and responses.
type envelope struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Message string `json:"message"`
}

// NewClient creates a client for the given websocket URL
// (e.g. ws://localhost:18110).
func NewClient(url string, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{
		url:     url,
		log:     log.Component("rpc"),
		pending: make(map[uint64]chan *envelope),
		closed:  make(chan struct{}),
	}
}

// Connect dials the node and verifies it maintains a UTXO index; the payout
// engine cannot operate against a node without one.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrNotConnected, c.url, err)
	}
	c.conn = conn
	go c.readLoop()

	var info getServerInfoResponse
	if err := c.call(ctx, "getServerInfo", struct{}{}, &info); err != nil {
		c.Close()
		return err
	}
	if !info.IsUtxoIndexed {
		c.Close()
		return ErrNoUtxoIndex
	}
	c.log.Info("connected to kaspad", "url", c.url, "version", info.ServerVersion, "synced", info.IsSynced)
	return nil
}

// Close tears down the connection and fails all in-flight calls.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// readLoop dispatches responses to their pending callers.
func (c *Client) readLoop() {
	for {
		var resp envelope
		if err := c.conn.ReadJSON(&resp); err != nil {
			select {
			case <-c.closed:
			default:
				c.log.Error("read failed, closing connection", "error", err)
				c.Close()
			}
			return
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()

		if ok {
			ch <- &resp
		}
	}
}

// call performs one request/response round trip.
func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", method, err)
	}
	id := c.requestID.Add(1)
	req := envelope{ID: id, Method: method, Params: rawParams}

	ch := make(chan *envelope, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err = c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return fmt.Errorf("%s: %w", method, err)
	}

	timeout := time.NewTimer(defaultCallTimeout)
	defer timeout.Stop()

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return fmt.Errorf("%s: node error: %s", method, resp.Error.Message)
		}
		if result != nil {
			if err := json.Unmarshal(resp.Params, result); err != nil {
				return fmt.Errorf("unmarshal %s response: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return ErrClosed
	case <-timeout.C:
		return fmt.Errorf("%s: %w", method, context.DeadlineExceeded)
	}
}

// UTXOsByAddress lists the spendable UTXOs of one address.
func (c *Client) UTXOsByAddress(ctx context.Context, addr string) ([]payout.UTXO, error) {
	var resp utxosByAddressesResponse
	err := c.call(ctx, "getUtxosByAddresses", &utxosByAddressesRequest{Addresses: []string{addr}}, &resp)
	if err != nil {
		return nil, err
	}

	utxos := make([]payout.UTXO, 0, len(resp.Entries))
	for _, entry := range resp.Entries {
		converted, err := entry.toUTXO()
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, converted)
	}
	return utxos, nil
}

// SubmitTransaction broadcasts a signed transaction and returns its id.
func (c *Client) SubmitTransaction(ctx context.Context, transaction *tx.Transaction, allowOrphan bool) (string, error) {
	req := &submitTransactionRequest{
		Transaction: toRPCTransaction(transaction),
		AllowOrphan: allowOrphan,
	}
	var resp submitTransactionResponse
	if err := c.call(ctx, "submitTransaction", req, &resp); err != nil {
		return "", err
	}
	return resp.TransactionID, nil
}
