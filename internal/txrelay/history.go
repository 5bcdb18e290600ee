package txrelay

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/deque"
)

type TxKind string

const (
	KindApprove TxKind = "approve"
	KindDeposit TxKind = "deposit"
	KindClaim   TxKind = "claim"
	KindDispute TxKind = "dispute"
	KindVote    TxKind = "vote"
)

type TxStatus string

const (
	TxStatusSubmitted TxStatus = "submitted"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusReverted  TxStatus = "reverted"
	TxStatusTimedOut  TxStatus = "timed_out"
)

type HistoryEntry struct {
	Hash        common.Hash
	Kind        TxKind
	CostWei     *big.Int
	SubmittedAt time.Time
	Status      TxStatus
}

// History is a bounded ring of recent submissions, oldest evicted first.
// It backs the diagnostics endpoint only and is never persisted.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  deque.Deque[*HistoryEntry]
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{capacity: capacity}
}

func (h *History) Add(hash common.Hash, kind TxKind, costWei *big.Int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.entries.Len() >= h.capacity {
		h.entries.PopFront()
	}
	h.entries.PushBack(&HistoryEntry{
		Hash:        hash,
		Kind:        kind,
		CostWei:     costWei,
		SubmittedAt: time.Now(),
		Status:      TxStatusSubmitted,
	})
}

func (h *History) SetStatus(hash common.Hash, status TxStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := h.entries.Len() - 1; i >= 0; i-- {
		if entry := h.entries.At(i); entry.Hash == hash {
			entry.Status = status
			return
		}
	}
}

// Entries returns newest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]HistoryEntry, 0, h.entries.Len())
	for i := h.entries.Len() - 1; i >= 0; i-- {
		out = append(out, *h.entries.At(i))
	}
	return out
}
