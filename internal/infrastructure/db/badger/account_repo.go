package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const accountStoreDir = "accounts"

// Key layout:
//
//	account/<address>:type|sk|salt|signingKey|<metadataKey>
//	alias/accounts:<alias> -> address
//	alias/senders:<alias>  -> address
//
// The sk field doubles as the existence sentinel for the whole record.
const (
	accountKeyPrefix = "account/"
	aliasKeyPrefix   = "alias/"

	fieldType       = "type"
	fieldSecretKey  = "sk"
	fieldSalt       = "salt"
	fieldSigningKey = "signingKey"
)

type accountRepository struct {
	store *badgerhold.Store
}

func NewAccountRepository(config ...interface{}) (domain.AccountRepository, error) {
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
		dir = filepath.Join(baseDir, accountStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open account store: %s", err)
	}

	return &accountRepository{store}, nil
}

func (r *accountRepository) StoreAccount(
	ctx context.Context, account domain.Account,
) error {
	// the whole record goes in a single transaction, a failure writes nothing
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		if len(account.Alias) > 0 {
			aliasKey := aliasKeyPrefix + domain.AccountAliasPrefix + account.Alias
			if err := tx.Set([]byte(aliasKey), []byte(account.Address)); err != nil {
				return err
			}
		}
		fields := map[string][]byte{
			fieldType:       []byte(account.Type),
			fieldSecretKey:  account.SecretKey,
			fieldSalt:       account.Salt,
			fieldSigningKey: account.SigningKey,
		}
		for field, value := range fields {
			if err := tx.Set(accountFieldKey(account.Address, field), value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *accountRepository) RetrieveAccount(
	ctx context.Context, address string,
) (*domain.Account, error) {
	account := &domain.Account{Address: address}
	if err := r.store.Badger().View(func(tx *badger.Txn) error {
		secretKey, err := getValue(tx, accountFieldKey(address, fieldSecretKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, address)
			}
			return err
		}
		account.SecretKey = secretKey

		salt, err := getValue(tx, accountFieldKey(address, fieldSalt))
		if err != nil {
			return err
		}
		account.Salt = salt

		typeBuf, err := getValue(tx, accountFieldKey(address, fieldType))
		if err != nil {
			return err
		}
		account.Type = domain.AccountType(typeBuf)

		signingKey, err := getValue(tx, accountFieldKey(address, fieldSigningKey))
		if err != nil {
			return err
		}
		account.SigningKey = signingKey
		return nil
	}); err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) StoreSender(
	ctx context.Context, address, alias string,
) error {
	if len(alias) <= 0 {
		return domain.ErrMissingAlias
	}
	aliasKey := aliasKeyPrefix + domain.SenderAliasPrefix + alias
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(aliasKey), []byte(address))
	})
}

func (r *accountRepository) StoreAccountMetadata(
	ctx context.Context, aliasOrAddress, key string, value []byte,
) error {
	address, err := r.resolveAddress(ctx, aliasOrAddress)
	if err != nil {
		return err
	}
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		return tx.Set(accountFieldKey(address, key), value)
	})
}

func (r *accountRepository) RetrieveAccountMetadata(
	ctx context.Context, aliasOrAddress, key string,
) ([]byte, error) {
	address, err := r.resolveAddress(ctx, aliasOrAddress)
	if err != nil {
		return nil, err
	}
	var value []byte
	if err := r.store.Badger().View(func(tx *badger.Txn) error {
		buf, err := getValue(tx, accountFieldKey(address, key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf(
					"%w: %s for account %s", domain.ErrMetadataNotFound, key, aliasOrAddress,
				)
			}
			return err
		}
		value = buf
		return nil
	}); err != nil {
		return nil, err
	}
	return value, nil
}

func (r *accountRepository) ListAccounts(
	ctx context.Context,
) ([]domain.AliasedAddress, error) {
	return r.listAliases(domain.AccountAliasPrefix)
}

func (r *accountRepository) ListSenders(
	ctx context.Context,
) ([]domain.AliasedAddress, error) {
	return r.listAliases(domain.SenderAliasPrefix)
}

func (r *accountRepository) DeleteAccount(
	ctx context.Context, address string,
) error {
	if err := r.store.Badger().Update(func(tx *badger.Txn) error {
		for _, field := range []string{
			fieldSecretKey, fieldSalt, fieldType, fieldSigningKey,
		} {
			if err := tx.Delete(accountFieldKey(address, field)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	// reverse lookup by full scan, deletions are rare
	accounts, err := r.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, aliased := range accounts {
		if aliased.Address != address {
			continue
		}
		return r.store.Badger().Update(func(tx *badger.Txn) error {
			return tx.Delete([]byte(aliasKeyPrefix + aliased.Alias))
		})
	}
	return nil
}

func (r *accountRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *accountRepository) resolveAddress(
	ctx context.Context, aliasOrAddress string,
) (string, error) {
	if strings.HasPrefix(aliasOrAddress, "0x") {
		if _, err := r.RetrieveAccount(ctx, aliasOrAddress); err != nil {
			return "", err
		}
		return aliasOrAddress, nil
	}

	aliasKey := aliasKeyPrefix + domain.AccountAliasPrefix + aliasOrAddress
	var address string
	if err := r.store.Badger().View(func(tx *badger.Txn) error {
		buf, err := getValue(tx, []byte(aliasKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, aliasOrAddress)
			}
			return err
		}
		address = string(buf)
		return nil
	}); err != nil {
		return "", err
	}
	return address, nil
}

func (r *accountRepository) listAliases(
	namespace string,
) ([]domain.AliasedAddress, error) {
	prefix := []byte(aliasKeyPrefix + namespace)
	aliased := make([]domain.AliasedAddress, 0)
	if err := r.store.Badger().View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			address, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			aliased = append(aliased, domain.AliasedAddress{
				Alias:   strings.TrimPrefix(string(item.Key()), aliasKeyPrefix),
				Address: string(address),
			})
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return aliased, nil
}

func accountFieldKey(address, field string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", accountKeyPrefix, address, field))
}

func getValue(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
