package peer_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ardanlabs/povcoin/foundation/blockchain/chain"
	"github.com/ardanlabs/povcoin/foundation/blockchain/crypto"
	"github.com/ardanlabs/povcoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/povcoin/foundation/blockchain/peer"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

const (
	success = "✓"
	failed  = "✗"
)

func TestSessionHandshakeQueriesLatest(t *testing.T) {
	t.Log("Given the need for a newly connected peer to learn the remote's head.")
	{
		c := chain.New(mempool.New(), nil)
		g := peer.New(c, mempool.New())

		srv := httptest.NewServer(g.Handler())
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("\t%s\tshould be able to dial the peer endpoint : %s", failed, err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(3 * time.Second))

		var msg struct {
			Type int    `json:"type"`
			Data string `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("\t%s\tshould receive a handshake message : %s", failed, err)
		}
		if msg.Type != 0 {
			t.Fatalf("\t%s\tshould receive QUERY_LATEST (0) first : got %d", failed, msg.Type)
		}
		t.Logf("\t%s\tshould receive QUERY_LATEST (0) first.", success)
	}
}

func TestAcceptBlockBroadcastsToOtherSessions(t *testing.T) {
	t.Log("Given the need to propagate a locally mined block to connected peers.")
	{
		priv, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tshould be able to generate a key : %s", failed, err)
		}
		addr := crypto.Address(priv)

		pool := mempool.New()
		var g *peer.Gossip
		c := chain.New(pool, func(b chain.Block) {
			g.BroadcastLatest(b)
		})
		g = peer.New(c, pool)

		srv := httptest.NewServer(g.Handler())
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("\t%s\tshould be able to dial the peer endpoint : %s", failed, err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(3 * time.Second))

		// Drain the initial QUERY_LATEST handshake frame.
		var hello struct {
			Type int `json:"type"`
		}
		if err := conn.ReadJSON(&hello); err != nil {
			t.Fatalf("\t%s\tshould receive the handshake frame : %s", failed, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cb := txn.WithID(txn.Transaction{
			TxIns:  []txn.TxIn{{TxOutIndex: 1}},
			TxOuts: []txn.TxOut{{Address: addr, Amount: txn.CoinbaseAmount}},
		})
		if _, err := c.MineWith(ctx, []txn.Transaction{cb}); err != nil {
			t.Fatalf("\t%s\tshould mine a block : %s", failed, err)
		}
		t.Logf("\t%s\tshould mine a block.", success)

		var announce struct {
			Type int    `json:"type"`
			Data string `json:"data"`
		}
		if err := conn.ReadJSON(&announce); err != nil {
			t.Fatalf("\t%s\tshould receive a broadcast of the new head : %s", failed, err)
		}
		if announce.Type != 2 {
			t.Fatalf("\t%s\tshould receive RESPONSE_BLOCKCHAIN (2) : got %d", failed, announce.Type)
		}
		t.Logf("\t%s\tshould receive RESPONSE_BLOCKCHAIN (2) announcing the new head.", success)
	}
}
