package domain

import "context"

// FeeJuiceEntry is one pending claimable bridged-value record for a
// recipient.
type FeeJuiceEntry struct {
	Amount    uint64
	Secret    string
	LeafIndex uint64
}

// FeeJuiceRepository keeps per-recipient LIFO stacks of pending entries. The
// stack pointer of a recipient always equals the count of its unclaimed
// entries. Implementations must serialize push/pop per recipient.
type FeeJuiceRepository interface {
	Push(ctx context.Context, recipient string, entry FeeJuiceEntry) error
	// Pop returns ErrFeeJuiceEmpty when the recipient's stack pointer is 0.
	Pop(ctx context.Context, recipient string) (*FeeJuiceEntry, error)
	Close()
}
