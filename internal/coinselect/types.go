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

// Package coinselect implements the fee/change/selection fixed-point loop:
// given a wallet's UTXOs and a set of requested payments, it decides which
// inputs to spend, sizes the change output(s), computes the minimum fee,
// and hands the result to an external Oracle (internal/ledgeroracle in
// production, a deterministic fake in tests) for serialization.
package coinselect

import (
	"math/big"
	"strconv"
)

// UTXO is an unspent transaction output available for spending.
type UTXO struct {
	TxHash      string // 32-byte hash, hex-encoded
	OutputIndex uint32
	Address     string // bech32 or Byron address
	Amount      []Amount
}

// Amount pairs an asset unit with a quantity. unit "lovelace" is the
// sentinel for the native coin; anything else is a hex policyId||name.
type Amount struct {
	Unit     string
	Quantity *big.Int
}

// ID returns the UTXO's uniqueness key (spec §3: "(txHash, outputIndex)").
func (u UTXO) ID() string {
	return u.TxHash + "#" + strconv.FormatUint(uint64(u.OutputIndex), 10)
}

// Lovelace returns the lovelace quantity carried by the UTXO, or zero.
func (u UTXO) Lovelace() *big.Int {
	for _, a := range u.Amount {
		if a.Unit == "lovelace" {
			return a.Quantity
		}
	}
	return big.NewInt(0)
}

// QuantityOf returns the UTXO's quantity of unit, or zero if absent.
func (u UTXO) QuantityOf(unit string) *big.Int {
	for _, a := range u.Amount {
		if a.Unit == unit {
			return a.Quantity
		}
	}
	return big.NewInt(0)
}

// Mode distinguishes a final composition (full serialization) from a
// precompose query (size/fee math only, spec §4.7).
type Mode int

const (
	ModeFinal Mode = iota
	ModePrecompose
)

// Output is the duck-typed output shape the spec (§9 "Duck-typed outputs")
// asks for: one variant with optional fields rather than separate
// final/precompose types. Representing a user-requested payment before
// normalization, after normalization, or a change output all use this type;
// IsChange marks change outputs and SetMax marks the drain-to-max output.
type Output struct {
	Address     *string  // nil in precompose mode when the caller omitted it
	Amount      *big.Int // lovelace; nil means "not yet determined" (precompose)
	Assets      []Amount // non-ada tokens carried by this output
	SetMax      bool
	IsChange    bool
	Mode        Mode
}

// TargetUnit returns the asset this output's setMax (if any) drains:
// assets[0].Unit if the output carries tokens, else "lovelace" (spec §3).
func (o Output) TargetUnit() string {
	if len(o.Assets) > 0 {
		return o.Assets[0].Unit
	}
	return "lovelace"
}

// ResolvedAddress returns Address, or placeholder if Address is nil
// (precompose mode, spec §4.7).
func (o Output) ResolvedAddress(placeholder string) string {
	if o.Address != nil {
		return *o.Address
	}
	return placeholder
}

// CertificateType enumerates the certificate tags recognized by spec §3.
type CertificateType int

const (
	CertStakeRegistration CertificateType = iota
	CertStakeDeregistration
	CertStakeDelegation
	CertStakePoolRegistration
)

// Certificate is a tagged variant of the four supported certificate kinds.
// PoolHash is only meaningful for CertStakeDelegation.
type Certificate struct {
	Type     CertificateType
	PoolHash string
}

// Withdrawal is a reward withdrawal; its amount is added to the input side
// of the balance equation (spec §3).
type Withdrawal struct {
	StakeAddress string
	Amount       *big.Int
}

// TxSummary is the Composer's return record (spec §3, §6.4).
type TxSummary struct {
	Inputs     []UTXO
	Outputs    []Output
	Fee        *big.Int
	TotalSpent *big.Int
	TTL        *uint64
	Tx         *SerializedTx // nil in precompose mode
	Max        *Output       // the finalized setMax output, if any
}

// SerializedTx is the serialized-and-hashed transaction body (spec §6.4).
type SerializedTx struct {
	BodyHex string
	HashHex string
	Size    int
}

// Options carries the recognized, caller-overridable tunables (spec §6.3).
// Unknown keys are the caller's problem to ignore before constructing this;
// Go's static typing makes "unknown keys ignored" automatic.
type Options struct {
	MaxTokensPerOutput uint32 // 0 means "use the configured default"
	FeeParamA          *big.Int
	ChangeBuilder      ChangeBuilderOptions
}

// ChangeBuilderOptions holds tunables for the Change Builder (spec §9
// "Random pick_extra_utxo"). PickExtraUTXO overrides the default
// largest-remaining-lovelace heuristic the Selection Loop uses when it
// needs to pull another UTXO to avoid burning dust into fee; seeded-random
// callers may supply their own chooser over the candidate set.
type ChangeBuilderOptions struct {
	PickExtraUTXO func(candidates []UTXO) (UTXO, bool)
}
