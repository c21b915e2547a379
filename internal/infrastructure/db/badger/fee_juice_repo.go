package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"

	log "github.com/sirupsen/logrus"
)

const feeJuiceStoreDir = "feejuice"

type feeJuiceEntry struct {
	Amount    uint64
	Secret    string
	LeafIndex uint64
}

type feeJuicePointer struct {
	Count int
}

type feeJuiceRepository struct {
	store *badgerhold.Store

	// push/pop on the same recipient race on the stack pointer, serialize
	// them per recipient
	lock          *sync.Mutex
	recipientLock map[string]*sync.Mutex
}

func NewFeeJuiceRepository(config ...interface{}) (domain.FeeJuiceRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, feeJuiceStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open fee-juice store: %s", err)
	}

	return &feeJuiceRepository{
		store:         store,
		lock:          &sync.Mutex{},
		recipientLock: make(map[string]*sync.Mutex),
	}, nil
}

func (r *feeJuiceRepository) Push(
	ctx context.Context, recipient string, entry domain.FeeJuiceEntry,
) error {
	lock := r.lockFor(recipient)
	lock.Lock()
	defer lock.Unlock()

	pointer, err := r.getPointer(recipient)
	if err != nil {
		return err
	}
	pointer++

	if err := r.store.Upsert(entryKey(recipient, pointer), feeJuiceEntry{
		Amount:    entry.Amount,
		Secret:    entry.Secret,
		LeafIndex: entry.LeafIndex,
	}); err != nil {
		return err
	}
	if err := r.store.Upsert(
		pointerKey(recipient), feeJuicePointer{pointer},
	); err != nil {
		return err
	}

	log.Debugf(
		"pushed %d fee juice for recipient %s, stack pointer %d",
		entry.Amount, recipient, pointer,
	)
	return nil
}

func (r *feeJuiceRepository) Pop(
	ctx context.Context, recipient string,
) (*domain.FeeJuiceEntry, error) {
	lock := r.lockFor(recipient)
	lock.Lock()
	defer lock.Unlock()

	pointer, err := r.getPointer(recipient)
	if err != nil {
		return nil, err
	}

	var entry feeJuiceEntry
	if err := r.store.Get(entryKey(recipient, pointer), &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf(
				"%w: %s, stack pointer %d", domain.ErrFeeJuiceEmpty, recipient, pointer,
			)
		}
		return nil, err
	}

	if err := r.store.Upsert(
		pointerKey(recipient), feeJuicePointer{pointer - 1},
	); err != nil {
		return nil, err
	}

	log.Debugf(
		"retrieved %d fee juice for recipient %s, stack pointer %d",
		entry.Amount, recipient, pointer-1,
	)
	return &domain.FeeJuiceEntry{
		Amount:    entry.Amount,
		Secret:    entry.Secret,
		LeafIndex: entry.LeafIndex,
	}, nil
}

func (r *feeJuiceRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *feeJuiceRepository) lockFor(recipient string) *sync.Mutex {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.recipientLock[recipient]; !ok {
		r.recipientLock[recipient] = &sync.Mutex{}
	}
	return r.recipientLock[recipient]
}

func (r *feeJuiceRepository) getPointer(recipient string) (int, error) {
	var pointer feeJuicePointer
	if err := r.store.Get(pointerKey(recipient), &pointer); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return pointer.Count, nil
}

func entryKey(recipient string, pointer int) string {
	return fmt.Sprintf("%s:%d", recipient, pointer)
}

func pointerKey(recipient string) string {
	return fmt.Sprintf("%s:stackPointer", recipient)
}
