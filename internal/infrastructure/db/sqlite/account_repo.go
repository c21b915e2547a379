package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/otcdesk/walletd/internal/core/domain"
)

const (
	fieldType       = "type"
	fieldSecretKey  = "sk"
	fieldSalt       = "salt"
	fieldSigningKey = "signingKey"
)

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(config ...interface{}) (domain.AccountRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open account repository: invalid config, expected db at 0")
	}

	return &accountRepository{db}, nil
}

func (r *accountRepository) StoreAccount(
	ctx context.Context, account domain.Account,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	// nolint:all
	defer tx.Rollback()

	if len(account.Alias) > 0 {
		if err := upsertAlias(
			ctx, tx, domain.AccountAliasPrefix+account.Alias, account.Address,
		); err != nil {
			return err
		}
	}
	fields := [][2]interface{}{
		{fieldType, []byte(account.Type)},
		{fieldSecretKey, account.SecretKey},
		{fieldSalt, account.Salt},
		{fieldSigningKey, account.SigningKey},
	}
	for _, field := range fields {
		if err := upsertField(
			ctx, tx, account.Address, field[0].(string), field[1].([]byte),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *accountRepository) RetrieveAccount(
	ctx context.Context, address string,
) (*domain.Account, error) {
	secretKey, err := r.getField(ctx, address, fieldSecretKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, address)
		}
		return nil, err
	}
	salt, err := r.getField(ctx, address, fieldSalt)
	if err != nil {
		return nil, err
	}
	typeBuf, err := r.getField(ctx, address, fieldType)
	if err != nil {
		return nil, err
	}
	signingKey, err := r.getField(ctx, address, fieldSigningKey)
	if err != nil {
		return nil, err
	}

	return &domain.Account{
		Address:    address,
		Type:       domain.AccountType(typeBuf),
		SecretKey:  secretKey,
		Salt:       salt,
		SigningKey: signingKey,
	}, nil
}

func (r *accountRepository) StoreSender(
	ctx context.Context, address, alias string,
) error {
	if len(alias) <= 0 {
		return domain.ErrMissingAlias
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO aliases (alias, address) VALUES (?, ?)
		 ON CONFLICT(alias) DO UPDATE SET address = excluded.address`,
		domain.SenderAliasPrefix+alias, address,
	)
	return err
}

func (r *accountRepository) StoreAccountMetadata(
	ctx context.Context, aliasOrAddress, key string, value []byte,
) error {
	address, err := r.resolveAddress(ctx, aliasOrAddress)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO account_fields (address, field, value) VALUES (?, ?, ?)
		 ON CONFLICT(address, field) DO UPDATE SET value = excluded.value`,
		address, key, value,
	)
	return err
}

func (r *accountRepository) RetrieveAccountMetadata(
	ctx context.Context, aliasOrAddress, key string,
) ([]byte, error) {
	address, err := r.resolveAddress(ctx, aliasOrAddress)
	if err != nil {
		return nil, err
	}
	value, err := r.getField(ctx, address, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf(
				"%w: %s for account %s", domain.ErrMetadataNotFound, key, aliasOrAddress,
			)
		}
		return nil, err
	}
	return value, nil
}

func (r *accountRepository) ListAccounts(
	ctx context.Context,
) ([]domain.AliasedAddress, error) {
	return r.listAliases(ctx, domain.AccountAliasPrefix)
}

func (r *accountRepository) ListSenders(
	ctx context.Context,
) ([]domain.AliasedAddress, error) {
	return r.listAliases(ctx, domain.SenderAliasPrefix)
}

func (r *accountRepository) DeleteAccount(
	ctx context.Context, address string,
) error {
	for _, field := range []string{
		fieldSecretKey, fieldSalt, fieldType, fieldSigningKey,
	} {
		if _, err := r.db.ExecContext(
			ctx,
			"DELETE FROM account_fields WHERE address = ? AND field = ?",
			address, field,
		); err != nil {
			return err
		}
	}

	accounts, err := r.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, aliased := range accounts {
		if aliased.Address != address {
			continue
		}
		_, err := r.db.ExecContext(
			ctx, "DELETE FROM aliases WHERE alias = ?", aliased.Alias,
		)
		return err
	}
	return nil
}

func (r *accountRepository) Close() {
	// nolint:all
	r.db.Close()
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

	row := r.db.QueryRowContext(
		ctx,
		"SELECT address FROM aliases WHERE alias = ?",
		domain.AccountAliasPrefix+aliasOrAddress,
	)
	var address string
	if err := row.Scan(&address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", domain.ErrAccountNotFound, aliasOrAddress)
		}
		return "", err
	}
	return address, nil
}

func (r *accountRepository) listAliases(
	ctx context.Context, namespace string,
) ([]domain.AliasedAddress, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT alias, address FROM aliases WHERE alias LIKE ? ORDER BY rowid",
		namespace+"%",
	)
	if err != nil {
		return nil, err
	}
	// nolint:all
	defer rows.Close()

	aliased := make([]domain.AliasedAddress, 0)
	for rows.Next() {
		var entry domain.AliasedAddress
		if err := rows.Scan(&entry.Alias, &entry.Address); err != nil {
			return nil, err
		}
		aliased = append(aliased, entry)
	}
	return aliased, rows.Err()
}

func (r *accountRepository) getField(
	ctx context.Context, address, field string,
) ([]byte, error) {
	row := r.db.QueryRowContext(
		ctx,
		"SELECT value FROM account_fields WHERE address = ? AND field = ?",
		address, field,
	)
	var value []byte
	if err := row.Scan(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func upsertField(
	ctx context.Context, tx *sql.Tx, address, field string, value []byte,
) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO account_fields (address, field, value) VALUES (?, ?, ?)
		 ON CONFLICT(address, field) DO UPDATE SET value = excluded.value`,
		address, field, value,
	)
	return err
}

func upsertAlias(
	ctx context.Context, tx *sql.Tx, alias, address string,
) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO aliases (alias, address) VALUES (?, ?)
		 ON CONFLICT(alias) DO UPDATE SET address = excluded.address`,
		alias, address,
	)
	return err
}
