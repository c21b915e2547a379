package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/otcdesk/walletd/internal/core/domain"

	log "github.com/sirupsen/logrus"
)

type feeJuiceRepository struct {
	db *sql.DB

	lock          *sync.Mutex
	recipientLock map[string]*sync.Mutex
}

func NewFeeJuiceRepository(config ...interface{}) (domain.FeeJuiceRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open fee-juice repository: invalid config, expected db at 0")
	}

	return &feeJuiceRepository{
		db:            db,
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

	pointer, err := r.getPointer(ctx, recipient)
	if err != nil {
		return err
	}
	pointer++

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	// nolint:all
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO fee_juice_entries (recipient, position, amount, secret, leaf_index)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(recipient, position) DO UPDATE SET
		   amount = excluded.amount,
		   secret = excluded.secret,
		   leaf_index = excluded.leaf_index`,
		recipient, pointer, int64(entry.Amount), entry.Secret, int64(entry.LeafIndex),
	); err != nil {
		return err
	}
	if err := setPointer(ctx, tx, recipient, pointer); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
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

	pointer, err := r.getPointer(ctx, recipient)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(
		ctx,
		`SELECT amount, secret, leaf_index FROM fee_juice_entries
		 WHERE recipient = ? AND position = ?`,
		recipient, pointer,
	)
	var amount, leafIndex int64
	var secret string
	if err := row.Scan(&amount, &secret, &leafIndex); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf(
				"%w: %s, stack pointer %d", domain.ErrFeeJuiceEmpty, recipient, pointer,
			)
		}
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	// nolint:all
	defer tx.Rollback()

	if err := setPointer(ctx, tx, recipient, pointer-1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Debugf(
		"retrieved %d fee juice for recipient %s, stack pointer %d",
		amount, recipient, pointer-1,
	)
	return &domain.FeeJuiceEntry{
		Amount:    uint64(amount),
		Secret:    secret,
		LeafIndex: uint64(leafIndex),
	}, nil
}

func (r *feeJuiceRepository) Close() {
	// the db handle is shared with the account repository and closed there
}

func (r *feeJuiceRepository) lockFor(recipient string) *sync.Mutex {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.recipientLock[recipient]; !ok {
		r.recipientLock[recipient] = &sync.Mutex{}
	}
	return r.recipientLock[recipient]
}

func (r *feeJuiceRepository) getPointer(
	ctx context.Context, recipient string,
) (int, error) {
	row := r.db.QueryRowContext(
		ctx,
		"SELECT pointer FROM fee_juice_pointers WHERE recipient = ?",
		recipient,
	)
	var pointer int
	if err := row.Scan(&pointer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return pointer, nil
}

func setPointer(
	ctx context.Context, tx *sql.Tx, recipient string, pointer int,
) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO fee_juice_pointers (recipient, pointer) VALUES (?, ?)
		 ON CONFLICT(recipient) DO UPDATE SET pointer = excluded.pointer`,
		recipient, pointer,
	)
	return err
}
