package txn

import "sync"

// UTXO is a TxOut identified by the transaction and index that produced it.
type UTXO struct {
	TxOutID    string
	TxOutIndex uint32
	Address    string
	Amount     uint64
}

// OutPoint returns the key this UTXO is stored under.
func (u UTXO) OutPoint() OutPoint {
	return OutPoint{TxOutID: u.TxOutID, TxOutIndex: u.TxOutIndex}
}

// UTXOSet is the authoritative ledger: every unspent output, unique by
// (txOutId, txOutIndex). The zero value is not usable; use NewUTXOSet.
type UTXOSet struct {
	mu  sync.RWMutex
	set map[OutPoint]UTXO
}

// NewUTXOSet constructs an empty UTXO set.
func NewUTXOSet() *UTXOSet {
	return &UTXOSet{set: make(map[OutPoint]UTXO)}
}

// Get looks up the UTXO at the given outpoint.
func (s *UTXOSet) Get(op OutPoint) (UTXO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.set[op]
	return u, ok
}

// Put inserts or overwrites a UTXO.
func (s *UTXOSet) Put(u UTXO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set[u.OutPoint()] = u
}

// Remove deletes the UTXO at the given outpoint, if present.
func (s *UTXOSet) Remove(op OutPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.set, op)
}

// Len returns the number of unspent outputs in the set.
func (s *UTXOSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.set)
}

// All returns a defensive copy of every UTXO in the set.
func (s *UTXOSet) All() []UTXO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UTXO, 0, len(s.set))
	for _, u := range s.set {
		out = append(out, u)
	}
	return out
}

// ByAddress returns a defensive copy of the UTXOs locked to address.
func (s *UTXOSet) ByAddress(address string) []UTXO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []UTXO
	for _, u := range s.set {
		if u.Address == address {
			out = append(out, u)
		}
	}
	return out
}

// Copy returns a deep, independent copy of the set.
func (s *UTXOSet) Copy() *UTXOSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cpy := NewUTXOSet()
	for op, u := range s.set {
		cpy.set[op] = u
	}
	return cpy
}

// apply mutates the set in place: removing consumed outpoints and adding
// the UTXOs produced by newOutputs. Used internally by ProcessTransactions
// once a block's transactions have validated.
func (s *UTXOSet) apply(consumed []OutPoint, newOutputs []UTXO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range consumed {
		delete(s.set, op)
	}
	for _, u := range newOutputs {
		s.set[u.OutPoint()] = u
	}
}
