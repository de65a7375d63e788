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

package coinselect

import "math/big"

// Oracle is the external Ledger Oracle contract (spec §6.1): everything
// this package needs from bech32/CBOR/BigInt/fee-polynomial/min-ada/witness
// machinery it treats as an opaque collaborator. internal/ledgeroracle
// implements this against Apollo/gouroboros in production; tests use a
// deterministic fake (see testoracle_test.go).
type Oracle interface {
	// MinAda returns the minimum lovelace an output with this asset
	// payload must carry, per the ledger's coins-per-UTXO-byte rule.
	MinAda(output Output) (*big.Int, error)
	// ValueSize returns the CBOR-encoded byte size of output's value
	// (lovelace + multi-asset map), used to enforce max_value_size
	// (spec §7 MAX_VALUE_SIZE_REACHED).
	ValueSize(output Output) (int, error)
	// FeeForInput returns the marginal fee contribution of spending input
	// from addr.
	FeeForInput(addr string, input UTXO) (*big.Int, error)
	// FeeForOutput returns the marginal fee contribution of output.
	FeeForOutput(output Output) (*big.Int, error)
	// DeriveStakeCredential derives path 2/0 from accountPubKey and
	// returns the hash of the raw public key.
	DeriveStakeCredential(accountPubKey []byte) ([]byte, error)
	// NewBuilder returns a fresh, per-composition transaction builder.
	// Builders are never shared between compositions (spec §5).
	NewBuilder(changeAddress string) Builder
}

// Builder is the oracle's mutable per-composition transaction state (spec
// §5 "Shared resources"). Inputs are added only forward and never removed;
// outputs, certificates and withdrawals are replaced wholesale by their
// setters.
type Builder interface {
	// AddInput appends input if it is not already present; returns
	// whether it was newly added (spec §4.4 step 1: "adding only the new
	// ones").
	AddInput(input UTXO) bool
	// SetOutputs replaces the full current output list (user outputs
	// plus whatever change the loop's current iteration produced).
	SetOutputs(outputs []Output)
	// SetCertificates replaces the certificate list.
	SetCertificates(certs []Certificate) error
	// SetStakeCredential supplies the stake credential every certificate
	// in this composition applies to (spec §3: one wallet, one stake
	// credential per request), derived by the oracle from the request's
	// account public key.
	SetStakeCredential(credential []byte)
	// SetWithdrawals replaces the withdrawal list.
	SetWithdrawals(withdrawals []Withdrawal)
	// SetTTL sets the transaction's time-to-live slot, if any.
	SetTTL(ttl *uint64)
	// SetFee fixes the declared transaction fee embedded in the
	// serialized body (spec §4.4/§4.5 converge on this value before the
	// Composer calls Serialize).
	SetFee(fee *big.Int)
	// Inputs returns the inputs added so far, in builder order (spec §4.4
	// tie-break: "Input order inside the final tx is whatever the
	// oracle's builder chooses").
	Inputs() []UTXO
	// MinFee returns a × size(tx) + b given the builder's current state
	// (spec §6.1/§6.2).
	MinFee() (*big.Int, error)
	// Serialize returns the CBOR tx body; the Composer hashes it with
	// Blake2b-256 to get the tx hash (spec §6.1).
	Serialize() ([]byte, error)
}
