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

// Package asset holds the asset-unit and quantity vocabulary shared across
// internal/coinselect and internal/ledgeroracle: a Cardano native asset is
// identified by policy-hash || asset-name in hex, or the sentinel
// "lovelace" for the native coin.
package asset

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Lovelace is the sentinel Unit denoting the native coin.
const Lovelace Unit = "lovelace"

// Unit identifies a fungible asset: "lovelace", or hex(policyId)+hex(name).
type Unit string

// Class represents a Cardano native asset identified by policy ID and asset
// name. ADA/lovelace is represented by empty policy ID and name.
type Class struct {
	PolicyId []byte
	Name     []byte
}

// NewClass creates a Class from hex-encoded policy ID and name.
func NewClass(policyIdHex, nameHex string) (Class, error) {
	policyId, err := hex.DecodeString(policyIdHex)
	if err != nil {
		return Class{}, fmt.Errorf("invalid policy ID hex: %w", err)
	}
	name, err := hex.DecodeString(nameHex)
	if err != nil {
		return Class{}, fmt.Errorf("invalid asset name hex: %w", err)
	}
	return Class{PolicyId: policyId, Name: name}, nil
}

// IsLovelace returns true if the Class represents ADA/lovelace.
func (c Class) IsLovelace() bool {
	return len(c.PolicyId) == 0 && len(c.Name) == 0
}

// Unit returns the asset-unit fingerprint: "lovelace", or
// "<policyIdHex><nameHex>" concatenated without a separator, matching the
// on-chain asset-unit convention (spec §3: "policyId ∥ assetName" in hex).
func (c Class) Unit() Unit {
	if c.IsLovelace() {
		return Lovelace
	}
	return Unit(hex.EncodeToString(c.PolicyId) + hex.EncodeToString(c.Name))
}

// String returns a human-readable representation of the Class.
func (c Class) String() string {
	return fmt.Sprintf(
		"Class< policy_id = %s, name = %s >",
		hex.EncodeToString(c.PolicyId),
		hex.EncodeToString(c.Name),
	)
}

// ParseUnit splits a Unit back into its policy-id/asset-name hex halves.
// Returns an error if u is not Lovelace and is shorter than a 28-byte policy
// ID prefix (56 hex characters); the characters are not checked to be hex.
func ParseUnit(u Unit) (policyIdHex, nameHex string, err error) {
	if u == Lovelace {
		return "", "", nil
	}
	s := string(u)
	const policyIdHexLen = 56 // 28-byte Blake2b-224 hash, hex-encoded
	if len(s) < policyIdHexLen {
		return "", "", fmt.Errorf("asset unit %q too short to contain a policy ID", u)
	}
	return s[:policyIdHexLen], s[policyIdHexLen:], nil
}

// Zero returns a zero-valued quantity. Always allocate a fresh *big.Int per
// caller: big.Int values returned from here must never be aliased and
// mutated across owners.
func Zero() *big.Int {
	return big.NewInt(0)
}

// New returns a quantity for an int64 amount.
func New(v int64) *big.Int {
	return big.NewInt(v)
}

// IsZero reports whether q is nil or exactly zero.
func IsZero(q *big.Int) bool {
	return q == nil || q.Sign() == 0
}

// IsNegative reports whether q is non-nil and strictly negative.
func IsNegative(q *big.Int) bool {
	return q != nil && q.Sign() < 0
}

// Amount pairs a Unit with a quantity.
type Amount struct {
	Unit     Unit
	Quantity *big.Int
}
