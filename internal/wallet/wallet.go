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

// Package wallet holds the singleton wallet derived from the configured
// mnemonic, the way every tx-builder call site in this codebase's sibling
// packages expects (wallet.GetWallet().PaymentAddress,
// wallet.GetWallet().PaymentVKey.CborHex, ...).
package wallet

import (
	"fmt"

	"github.com/blinklabs-io/bursa"
	"golang.org/x/crypto/blake2b"

	"github.com/blinklabs-io/txselect/internal/config"
)

var globalWallet *bursa.Wallet

// Load derives the wallet from the configured mnemonic and stores it as
// the package singleton.
func Load() (*bursa.Wallet, error) {
	cfg := config.GetConfig()
	w, err := bursa.NewWallet(cfg.Wallet.Mnemonic)
	if err != nil {
		return nil, fmt.Errorf("error deriving wallet: %w", err)
	}
	globalWallet = &w
	return globalWallet, nil
}

// GetWallet returns the singleton wallet, deriving it on first access.
func GetWallet() *bursa.Wallet {
	if globalWallet == nil {
		if _, err := Load(); err != nil {
			return nil
		}
	}
	return globalWallet
}

// DeriveStakeCredential implements the Oracle contract's
// derive_stake_credential(accountPubKey) (spec §6.1): the stake
// credential is the Blake2b-224 hash of the raw public key at path 2/0.
// bursa.NewWallet already performs the 1852'/1815'/0'/2/0 derivation
// internally (GetWallet().StakeVKey); this hashes whatever raw public key
// bytes the caller supplies, so it accepts either the wallet's own stake
// verification key bytes or an externally supplied account public key.
func DeriveStakeCredential(accountPubKey []byte) ([]byte, error) {
	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating blake2b hasher: %w", err)
	}
	if _, err := h.Write(accountPubKey); err != nil {
		return nil, fmt.Errorf("error hashing public key: %w", err)
	}
	return h.Sum(nil), nil
}
