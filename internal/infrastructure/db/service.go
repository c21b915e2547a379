package db

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/otcdesk/walletd/internal/core/domain"
	"github.com/otcdesk/walletd/internal/core/ports"
	badgerdb "github.com/otcdesk/walletd/internal/infrastructure/db/badger"
	sqlitedb "github.com/otcdesk/walletd/internal/infrastructure/db/sqlite"
)

//go:embed sqlite/migration/*
var migrations embed.FS

var (
	accountStoreTypes = map[string]func(...interface{}) (domain.AccountRepository, error){
		"badger": badgerdb.NewAccountRepository,
		"sqlite": sqlitedb.NewAccountRepository,
	}
	feeJuiceStoreTypes = map[string]func(...interface{}) (domain.FeeJuiceRepository, error){
		"badger": badgerdb.NewFeeJuiceRepository,
		"sqlite": sqlitedb.NewFeeJuiceRepository,
	}
)

const sqliteDbFile = "sqlite.db"

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	accountStore  domain.AccountRepository
	feeJuiceStore domain.FeeJuiceRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	accountStoreFactory, ok := accountStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	feeJuiceStoreFactory := feeJuiceStoreTypes[config.DataStoreType]

	storeConfig := config.DataStoreConfig
	if config.DataStoreType == "sqlite" {
		db, err := openAndMigrateSqlite(config.DataStoreConfig)
		if err != nil {
			return nil, err
		}
		storeConfig = []interface{}{db}
	}

	accountStore, err := accountStoreFactory(storeConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}
	feeJuiceStore, err := feeJuiceStoreFactory(storeConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fee-juice store: %w", err)
	}

	return &service{accountStore, feeJuiceStore}, nil
}

func (s *service) Accounts() domain.AccountRepository {
	return s.accountStore
}

func (s *service) FeeJuice() domain.FeeJuiceRepository {
	return s.feeJuiceStore
}

func (s *service) Close() {
	s.feeJuiceStore.Close()
	s.accountStore.Close()
}

func openAndMigrateSqlite(config []interface{}) (interface{}, error) {
	if len(config) < 1 {
		return nil, errors.New("invalid config")
	}
	dbDir, ok := config[0].(string)
	if !ok {
		return nil, errors.New("invalid db directory")
	}

	db, err := sqlitedb.OpenDb(filepath.Join(dbDir, sqliteDbFile))
	if err != nil {
		return nil, err
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	source, err := iofs.New(migrations, "sqlite/migration")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("failed to migrate up: %w", err)
	}

	return db, nil
}
