package wallet

import (
	"strings"
	"sync"

	"github.com/AlexZinkM/evm-wallet/internal/metrics"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// PendingPool holds broadcast transactions that are not yet confirmed,
// in submission order. Hashes compare case-insensitively.
type PendingPool struct {
	mu      sync.Mutex
	entries []model.PendingTransaction
}

// NewPendingPool creates an empty pool
func NewPendingPool() *PendingPool {
	return &PendingPool{}
}

// Add registers a transaction. A hash already present is replaced in place.
func (p *PendingPool) Add(tx model.PendingTransaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := p.indexOf(tx.Hash); i >= 0 {
		p.entries[i] = tx
		return
	}
	p.entries = append(p.entries, tx)
	metrics.PendingTxs.Set(float64(len(p.entries)))
}

// Get returns the entry with hash
func (p *PendingPool) Get(hash string) fn.Option[model.PendingTransaction] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := p.indexOf(hash); i >= 0 {
		return fn.Some(p.entries[i])
	}
	return fn.None[model.PendingTransaction]()
}

// Remove deletes the entry with hash and reports whether it was present
func (p *PendingPool) Remove(hash string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(hash)
	if i < 0 {
		return false
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	metrics.PendingTxs.Set(float64(len(p.entries)))
	return true
}

// Replace swaps the entry with oldHash for tx, keeping its position
func (p *PendingPool) Replace(oldHash string, tx model.PendingTransaction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(oldHash)
	if i < 0 {
		return false
	}
	p.entries[i] = tx
	return true
}

// Settle removes hash and every entry replacing it. It is called once the
// nonce of hash is used up on chain.
func (p *PendingPool) Settle(hash string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.entries[:0]
	removed := false
	for _, e := range p.entries {
		if strings.EqualFold(e.Hash, hash) || strings.EqualFold(e.Replaces, hash) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	metrics.PendingTxs.Set(float64(len(p.entries)))
	return removed
}

// SettleConfirmed removes every entry that confirmed history shows as mined,
// directly or through the transaction it replaces, and returns them.
func (p *PendingPool) SettleConfirmed(confirmed []model.ConfirmedTransaction) []model.PendingTransaction {
	if len(confirmed) == 0 {
		return nil
	}
	mined := make(map[string]struct{}, len(confirmed))
	for _, c := range confirmed {
		mined[strings.ToLower(c.Hash)] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var settled []model.PendingTransaction
	kept := p.entries[:0]
	for _, e := range p.entries {
		_, hit := mined[strings.ToLower(e.Hash)]
		if _, replaced := mined[strings.ToLower(e.Replaces)]; e.Replaces != "" && replaced {
			hit = true
		}
		if hit {
			settled = append(settled, e)
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	metrics.PendingTxs.Set(float64(len(p.entries)))
	return settled
}

// Tracks reports whether hash or a replacement of it is still in the pool
func (p *PendingPool) Tracks(hash string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range p.entries {
		if strings.EqualFold(e.Hash, hash) || strings.EqualFold(e.Replaces, hash) {
			return true
		}
	}
	return false
}

// MarkFailed records why a transaction did not confirm
func (p *PendingPool) MarkFailed(hash, reason string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(hash)
	if i < 0 {
		return false
	}
	p.entries[i].FailureReason = reason
	return true
}

// Snapshot returns a copy of the entries in submission order
func (p *PendingPool) Snapshot() []model.PendingTransaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.PendingTransaction, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of entries
func (p *PendingPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.entries)
}

// Clear drops every entry
func (p *PendingPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries = nil
	metrics.PendingTxs.Set(0)
}

func (p *PendingPool) indexOf(hash string) int {
	for i, e := range p.entries {
		if strings.EqualFold(e.Hash, hash) {
			return i
		}
	}
	return -1
}
