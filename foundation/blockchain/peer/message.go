// Package peer implements the gossip transport between nodes: message
// framing over WebSocket connections, per-connection session bookkeeping,
// the connect handshake, and the blockchain/mempool synchronization
// protocol that keeps nodes converged on a single longest-by-work chain.
package peer

import (
	"encoding/json"

	"github.com/ardanlabs/povcoin/foundation/blockchain/chain"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// Kind identifies the purpose of a gossip message.
type Kind int

// The full set of message kinds exchanged between peers.
const (
	QueryLatest             Kind = 0
	QueryAll                Kind = 1
	ResponseBlockchain      Kind = 2
	QueryTransactionPool    Kind = 3
	ResponseTransactionPool Kind = 4
)

// Message is the wire envelope every gossip frame is sent as: a kind tag
// and an opaque, kind-specific JSON payload.
type Message struct {
	Type Kind    `json:"type"`
	Data *string `json:"data"`
}

// queryMessage builds a query-kind message, which carries no payload.
func queryMessage(kind Kind) Message {
	return Message{Type: kind, Data: nil}
}

// newMessage marshals payload into a Message carrying kind.
func newMessage(kind Kind, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, errs.Wrap(errs.ParseError, err)
	}

	s := string(raw)
	return Message{Type: kind, Data: &s}, nil
}

func blockchainMessage(kind Kind, blocks []chain.Block) (Message, error) {
	return newMessage(kind, blocks)
}

func transactionPoolMessage(kind Kind, txs []txn.Transaction) (Message, error) {
	return newMessage(kind, txs)
}

func decodeBlocks(m Message) ([]chain.Block, error) {
	if m.Data == nil {
		return nil, errs.New(errs.ParseError, "peer: message %d has no data", m.Type)
	}
	var blocks []chain.Block
	if err := json.Unmarshal([]byte(*m.Data), &blocks); err != nil {
		return nil, errs.Wrap(errs.ParseError, err)
	}
	return blocks, nil
}

func decodeTransactions(m Message) ([]txn.Transaction, error) {
	if m.Data == nil {
		return nil, errs.New(errs.ParseError, "peer: message %d has no data", m.Type)
	}
	var txs []txn.Transaction
	if err := json.Unmarshal([]byte(*m.Data), &txs); err != nil {
		return nil, errs.Wrap(errs.ParseError, err)
	}
	return txs, nil
}
