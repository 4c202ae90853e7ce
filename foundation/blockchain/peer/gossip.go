package peer

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ardanlabs/povcoin/foundation/blockchain/chain"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/mempool"
)

// mempoolQueryDelay is the deferred-broadcast window after a session
// connects, per the handshake in spec §4.5: query the new peer's latest
// block immediately, then ask everyone for their mempool shortly after.
const mempoolQueryDelay = 500 * time.Millisecond

// Gossip ties the session registry to the chain and mempool it
// synchronizes. It holds no authority of its own over either: every
// inbound message is routed into chain.AcceptBlock/ReplaceChain or
// mempool.Add, and the result, not the message, decides what happens next.
type Gossip struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	chain *chain.Chain
	pool  *mempool.Pool

	upgrader websocket.Upgrader
}

// New constructs a Gossip bound to c and pool.
func New(c *chain.Chain, pool *mempool.Pool) *Gossip {
	return &Gossip{
		sessions: make(map[uuid.UUID]*Session),
		chain:    c,
		pool:     pool,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ListenAndServe accepts inbound peer connections on addr until ctx is
// cancelled.
func (g *Gossip) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", g.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}

// Handler returns an http.HandlerFunc that upgrades inbound requests to
// gossip sessions. Exposed so a server endpoint can be mounted on a
// caller-provided mux rather than only through ListenAndServe.
func (g *Gossip) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		g.accept(conn)
	}
}

// Dial opens an outbound connection to a peer's gossip endpoint.
func (g *Gossip) Dial(url string) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return errs.Wrap(errs.TransportError, err)
	}

	g.accept(conn)
	return nil
}

// Peers returns the remote address of every currently registered session.
func (g *Gossip) Peers() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.sessions))
	for _, s := range g.sessions {
		out = append(out, s.RemoteAddr)
	}
	return out
}

// accept registers conn as a session, runs the connect handshake, and
// starts its read/write loops. Called for both inbound and outbound
// connections.
func (g *Gossip) accept(conn *websocket.Conn) {
	s := newSession(conn)

	g.mu.Lock()
	g.sessions[s.ID] = s
	g.mu.Unlock()

	go s.writeLoop()
	go g.readLoop(s)

	s.Send(queryMessage(QueryLatest))

	go func() {
		time.Sleep(mempoolQueryDelay)
		g.broadcastQueryTransactionPool()
	}()
}

// deregister removes s from the session set and closes it. Safe to call
// more than once.
func (g *Gossip) deregister(s *Session) {
	g.mu.Lock()
	delete(g.sessions, s.ID)
	g.mu.Unlock()

	s.Close()
}

// readLoop decodes and routes every frame from s until it closes. All
// per-message errors are swallowed here: a malformed or rejected message
// never tears down the session, only a transport failure does.
func (g *Gossip) readLoop(s *Session) {
	defer g.deregister(s)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		g.handle(s, msg)
	}
}

// handle dispatches a single decoded message to its kind-specific handler.
func (g *Gossip) handle(s *Session, msg Message) {
	switch msg.Type {
	case QueryLatest:
		g.replyLatest(s)
	case QueryAll:
		g.replyAll(s)
	case ResponseBlockchain:
		g.handleBlockchainResponse(msg)
	case QueryTransactionPool:
		g.replyTransactionPool(s)
	case ResponseTransactionPool:
		g.handleTransactionPoolResponse(msg)
	}
}

func (g *Gossip) replyLatest(s *Session) {
	msg, err := blockchainMessage(ResponseBlockchain, []chain.Block{g.chain.Latest()})
	if err != nil {
		return
	}
	s.Send(msg)
}

func (g *Gossip) replyAll(s *Session) {
	msg, err := blockchainMessage(ResponseBlockchain, g.chain.ChainSnapshot())
	if err != nil {
		return
	}
	s.Send(msg)
}

func (g *Gossip) replyTransactionPool(s *Session) {
	msg, err := transactionPoolMessage(ResponseTransactionPool, g.pool.Snapshot())
	if err != nil {
		return
	}
	s.Send(msg)
}

// handleBlockchainResponse implements the chain response handling
// algorithm of spec §4.5: decide, from the received sequence and the
// local head, whether to accept a single extending block, request the
// peer's full chain, or run fork choice against it.
func (g *Gossip) handleBlockchainResponse(msg Message) {
	received, err := decodeBlocks(msg)
	if err != nil || len(received) == 0 {
		return
	}

	last := received[len(received)-1]
	held := g.chain.Latest()

	if last.Index <= held.Index {
		return
	}

	switch {
	case last.PreviousHash == held.Hash:
		if err := g.chain.AcceptBlock(last); err == nil {
			g.BroadcastLatest(last)
		}

	case len(received) == 1:
		g.broadcastQueryAll()

	default:
		if replaced, err := g.chain.ReplaceChain(received); err == nil && replaced {
			g.BroadcastLatest(g.chain.Latest())
		}
	}
}

// handleTransactionPoolResponse implements the transaction response
// handling of spec §4.5: each received transaction is offered to the
// mempool independently; acceptance of any of them triggers a mempool
// broadcast, rejection of one never blocks the rest.
func (g *Gossip) handleTransactionPoolResponse(msg Message) {
	txs, err := decodeTransactions(msg)
	if err != nil {
		return
	}

	var accepted bool
	for _, tx := range txs {
		if err := g.pool.Add(tx, g.chain.UTXOs()); err == nil {
			accepted = true
		}
	}

	if accepted {
		g.broadcastTransactionPool()
	}
}

// BroadcastLatest announces b as the new head to every registered session.
func (g *Gossip) BroadcastLatest(b chain.Block) {
	msg, err := blockchainMessage(ResponseBlockchain, []chain.Block{b})
	if err != nil {
		return
	}
	g.broadcast(msg)
}

func (g *Gossip) broadcastQueryAll() {
	g.broadcast(queryMessage(QueryAll))
}

func (g *Gossip) broadcastQueryTransactionPool() {
	g.broadcast(queryMessage(QueryTransactionPool))
}

func (g *Gossip) broadcastTransactionPool() {
	msg, err := transactionPoolMessage(ResponseTransactionPool, g.pool.Snapshot())
	if err != nil {
		return
	}
	g.broadcast(msg)
}

// broadcast sends msg to every currently registered session, best-effort.
func (g *Gossip) broadcast(msg Message) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, s := range g.sessions {
		s.Send(msg)
	}
}
