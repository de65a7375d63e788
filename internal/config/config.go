// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"

	ouroboros "github.com/blinklabs-io/gouroboros"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Logging       LoggingConfig  `yaml:"logging"`
	Debug         DebugConfig    `yaml:"debug"`
	Storage       StorageConfig  `yaml:"storage"`
	Indexer       IndexerConfig  `yaml:"indexer"`
	Wallet        WalletConfig   `yaml:"wallet"`
	Protocol      ProtocolConfig `yaml:"protocol"`
	CoinSelection CoinSelection  `yaml:"coinSelection"`
	Network       string         `yaml:"network"       envconfig:"NETWORK"`
	ListenAddress string         `yaml:"listenAddress" envconfig:"LISTEN_ADDRESS"`
	ListenPort    uint           `yaml:"port"           envconfig:"PORT"`
	NetworkMagic  uint32
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"DEBUG_PORT"`
}

// IndexerConfig configures the chain-sync source used to keep the wallet's
// own UTxO set in internal/storage up to date. Unlike the multi-profile
// topology the teacher service needs to watch dozens of DEX pool
// addresses, a coin-selection wallet only ever needs to sync from one
// intersect point for one address, so this is deliberately flat.
type IndexerConfig struct {
	Address         string `yaml:"address"         envconfig:"INDEXER_TCP_ADDRESS"`
	SocketPath      string `yaml:"socketPath"      envconfig:"INDEXER_SOCKET_PATH"`
	IntersectSlot   uint64 `yaml:"intersectSlot"   envconfig:"INDEXER_INTERSECT_SLOT"`
	IntersectHash   string `yaml:"intersectHash"   envconfig:"INDEXER_INTERSECT_HASH"`
}

type StorageConfig struct {
	Directory string `yaml:"dir" envconfig:"STORAGE_DIR"`
}

type WalletConfig struct {
	Mnemonic      string `yaml:"mnemonic"      envconfig:"MNEMONIC"`
	ChangeAddress string `yaml:"changeAddress" envconfig:"CHANGE_ADDRESS"`
}

// ProtocolConfig carries the ledger's coins-per-UTXO-byte / linear-fee
// constants (spec §6.2). Values default to Cardano mainnet at time of
// writing and are overridable via options.feeParams (spec §6.3).
type ProtocolConfig struct {
	FeeA             uint64 `yaml:"feeA"             envconfig:"FEE_A"`
	FeeB             uint64 `yaml:"feeB"             envconfig:"FEE_B"`
	CoinsPerUtxoByte uint64 `yaml:"coinsPerUtxoByte" envconfig:"COINS_PER_UTXO_BYTE"`
	MaxValueSize     uint64 `yaml:"maxValueSize"     envconfig:"MAX_VALUE_SIZE"`
	MaxTxSize        uint64 `yaml:"maxTxSize"        envconfig:"MAX_TX_SIZE"`
	KeyDeposit       uint64 `yaml:"keyDeposit"       envconfig:"KEY_DEPOSIT"`
	PoolDeposit      uint64 `yaml:"poolDeposit"      envconfig:"POOL_DEPOSIT"`
}

// CoinSelection carries the tunables the spec allows the caller to
// override per request via `options` (spec §6.3), plus their defaults.
type CoinSelection struct {
	MaxTokensPerOutput uint32 `yaml:"maxTokensPerOutput" envconfig:"MAX_TOKENS_PER_OUTPUT"`
	DustPullFloor      uint64 `yaml:"dustPullFloor"      envconfig:"DUST_PULL_FLOOR"`
	// PlaceholderAddress substitutes for a missing output address in
	// precompose mode (spec §4.7). Must be a valid bech32 address of the
	// network in use; only its byte length matters for size/fee math.
	PlaceholderAddress string `yaml:"placeholderAddress" envconfig:"PLACEHOLDER_ADDRESS"`
}

// Singleton config instance with default values
var globalConfig = &Config{
	Network:    "mainnet",
	ListenPort: 3000,
	Logging: LoggingConfig{
		Level: "info",
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Storage: StorageConfig{
		Directory: "./.txselect",
	},
	Protocol: ProtocolConfig{
		FeeA:             44,
		FeeB:             155_381,
		CoinsPerUtxoByte: 4_310,
		MaxValueSize:     5_000,
		MaxTxSize:        16_384,
		KeyDeposit:       2_000_000,
		PoolDeposit:      500_000_000,
	},
	CoinSelection: CoinSelection{
		MaxTokensPerOutput: 100,
		DustPullFloor:      5_000,
		PlaceholderAddress: "addr1q8n6j5eap0nch4kyehha3fhfhvr80z9a7pgrfw9qlfarqjvxp2ypxl3s3x8kxh4h9vw4g6vtxusj5lwlq7mx2as5g3sq07qg2y",
	},
}

func Load(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %s", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %s", err)
		}
	}
	// Load config values from environment variables
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %s", err)
	}
	// Populate network magic from network name
	network := ouroboros.NetworkByName(globalConfig.Network)
	if network == ouroboros.NetworkInvalid {
		return nil, fmt.Errorf("unknown network name: %s", globalConfig.Network)
	}
	globalConfig.NetworkMagic = network.NetworkMagic
	if globalConfig.CoinSelection.MaxTokensPerOutput == 0 {
		globalConfig.CoinSelection.MaxTokensPerOutput = 100
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
