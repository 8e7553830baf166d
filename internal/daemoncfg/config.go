// Package daemoncfg loads the TOML configuration file read by
// cmd/constrain-server.
package daemoncfg

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/dekarrin/constrain/internal/profiles"
	"github.com/dekarrin/constrain/internal/profiles/inmem"
	"github.com/dekarrin/constrain/internal/profiles/sqlite"
)

// DBType is the type of persistence layer a Database config connects to.
type DBType string

const (
	DatabaseNone     DBType = "none"
	DatabaseInMemory DBType = "inmem"
	DatabaseSQLite   DBType = "sqlite"
)

const (
	MinSecretSize = 32
	MaxSecretSize = 64
)

// Database holds the settings needed to connect to a profiles.Store.
type Database struct {
	// Type selects the persistence layer: "inmem" or "sqlite".
	Type DBType `toml:"type"`

	// DataDir is the directory sqlite stores its database file in. Only
	// used when Type is "sqlite".
	DataDir string `toml:"data_dir"`
}

// Connect opens the configured persistence layer.
func (db Database) Connect() (profiles.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewStore(), nil
	case DatabaseSQLite:
		if err := os.MkdirAll(db.DataDir, 0770); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := sqlite.NewDatastore(db.DataDir + "/constrain.db")
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}
		return store, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type)
	}
}

// Validate returns an error if db is not usable as-is.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("data_dir not set")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type)
	}
}

// EngineOptions mirrors grammar.EngineOptions with TOML field names, as the
// default applied to profiles that don't set their own.
type EngineOptions struct {
	ArenaCapacity   int  `toml:"arena_capacity"`
	EnableByteCache bool `toml:"enable_byte_cache"`
	StrictEnd       bool `toml:"strict_end"`
}

// ToGrammarOptions converts to the type the engine package consumes.
func (o EngineOptions) ToGrammarOptions() grammar.EngineOptions {
	return grammar.EngineOptions{
		ArenaCapacity:   o.ArenaCapacity,
		EnableByteCache: o.EnableByteCache,
		StrictEnd:       o.StrictEnd,
	}
}

// Config is the full daemon configuration, as read from a TOML file.
type Config struct {
	ListenAddress string `toml:"listen_address"`

	// TokenSecret signs bearer tokens for the admin profile-management
	// endpoints. If empty at Validate time, a random one should be
	// generated by the caller instead of starting with an empty secret.
	TokenSecret string `toml:"token_secret"`

	// AdminPassword is the plaintext password the server will bcrypt-hash
	// at startup for the admin login endpoint.
	AdminPassword string `toml:"admin_password"`

	DB Database `toml:"database"`

	UnauthDelayMillis int `toml:"unauth_delay_millis"`

	DefaultEngineOptions EngineOptions `toml:"default_engine_options"`
}

// UnauthDelay returns the configured delay as a time.Duration. A value less
// than 1 disables the delay.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		return 0
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// FillDefaults returns a copy of cfg with unset fields replaced by defaults.
func (cfg Config) FillDefaults() Config {
	newCfg := cfg

	if newCfg.ListenAddress == "" {
		newCfg.ListenAddress = "localhost:8080"
	}
	if newCfg.DB.Type == "" {
		newCfg.DB.Type = DatabaseInMemory
	}
	if newCfg.UnauthDelayMillis == 0 {
		newCfg.UnauthDelayMillis = 1000
	}
	if newCfg.AdminPassword == "" {
		newCfg.AdminPassword = "password"
	}

	return newCfg
}

// Validate returns an error if cfg has invalid or missing required fields.
// Call it on the result of FillDefaults.
func (cfg Config) Validate() error {
	secretLen := len(cfg.TokenSecret)
	if secretLen < MinSecretSize {
		return fmt.Errorf("token_secret: must be at least %d bytes, but is %d", MinSecretSize, secretLen)
	}
	if secretLen > MaxSecretSize {
		return fmt.Errorf("token_secret: must be no more than %d bytes, but is %d", MaxSecretSize, secretLen)
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// Load reads and parses a TOML config file at path.
func Load(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
	}
	cfg.DB.Type = DBType(strings.ToLower(string(cfg.DB.Type)))
	return cfg, nil
}
