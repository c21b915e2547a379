package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

var supportedDbs = supportedType{
	"badger": {},
	"sqlite": {},
}

type Config struct {
	Datadir  string
	Port     uint32
	NodeURL  string
	DbType   string
	DbDir    string
	LogLevel int
	NoCors   bool
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir  = "DATADIR"
	Port     = "PORT"
	NodeURL  = "NODE_URL"
	DbType   = "DB_TYPE"
	LogLevel = "LOG_LEVEL"
	NoCors   = "NO_CORS"

	defaultDatadir  = appDataDir("walletd")
	defaultPort     = 7080
	defaultNodeURL  = "http://localhost:8080"
	defaultDbType   = "badger"
	defaultLogLevel = 4
	defaultNoCors   = false
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("WALLETD")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, defaultPort)
	viper.SetDefault(NodeURL, defaultNodeURL)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(NoCors, defaultNoCors)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	return &Config{
		Datadir:  viper.GetString(Datadir),
		Port:     viper.GetUint32(Port),
		NodeURL:  viper.GetString(NodeURL),
		DbType:   viper.GetString(DbType),
		DbDir:    filepath.Join(viper.GetString(Datadir), "db"),
		LogLevel: viper.GetInt(LogLevel),
		NoCors:   viper.GetBool(NoCors),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if c.Port == 0 {
		return fmt.Errorf("missing port")
	}
	if _, err := url.Parse(c.NodeURL); err != nil {
		return fmt.Errorf("invalid node url: %s", err)
	}
	return nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	sort.Strings(types)
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
