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

// Package ledgeroracle implements coinselect.Oracle and coinselect.Builder
// against the real Cardano ledger machinery: Apollo for the final tx
// assembly and address decoding, gouroboros for CBOR, and a local CDDL-ish
// body encoding for the fixed-point loop's repeated size/fee measurements.
//
// The loop (internal/coinselect) calls Builder.MinFee dozens of times per
// composition as it converges; rebuilding and completing a real Apollo
// transaction on every call would mean repeatedly asking Apollo to balance
// a tx that is, by construction, not yet balanced. Instead, MinFee and
// ValueSize measure a lightweight local encoding of the same body shape
// (txmodel.go) and only the final, already-balanced Serialize call drives
// the real Apollo builder chain, mirroring the "placeholder fee, measure,
// recompute" idiom used throughout the example pack's own tx builders.
package ledgeroracle

import (
	"github.com/blinklabs-io/gouroboros/cbor"
)

// txInputRef mirrors a Shelley transaction_input: [tx_id, index].
type txInputRef struct {
	_     struct{} `cbor:",toarray"`
	TxId  []byte
	Index uint32
}

// txValue mirrors the post-Mary alternative value encoding used whenever a
// native-asset bundle may be present: [coin, multiasset<uint>]. Ada-only
// outputs could fold to a bare uint, but always emitting the 2-tuple form
// keeps this encoding uniform and the resulting size estimate monotonic,
// which is all the fee/min-ada arithmetic needs.
type txValue struct {
	_      struct{} `cbor:",toarray"`
	Coin   uint64
	Assets map[string]map[string]uint64
}

// txOutput mirrors a transaction_output: [address, value].
type txOutput struct {
	_       struct{} `cbor:",toarray"`
	Address []byte
	Value   txValue
}

// txBody mirrors the Shelley-era transaction_body map, keyed the way the
// real CDDL keys it (0 inputs, 1 outputs, 2 fee, 3 ttl, 4 certs, 5
// withdrawals); unset optional fields are omitted entirely.
type txBody struct {
	Inputs      []txInputRef        `cbor:"0,keyasint"`
	Outputs     []txOutput          `cbor:"1,keyasint"`
	Fee         uint64              `cbor:"2,keyasint"`
	TTL         *uint64             `cbor:"3,keyasint,omitempty"`
	Certs       []cbor.RawMessage   `cbor:"4,keyasint,omitempty"`
	Withdrawals map[string]uint64   `cbor:"5,keyasint,omitempty"`
}

// encodeValue CBOR-encodes a single output's value portion, used both for
// ValueSize (max_value_size enforcement, spec §7) and as part of MinAda.
func encodeValue(v txValue) ([]byte, error) {
	return cbor.Encode(&v)
}

// encodeOutput CBOR-encodes a full transaction_output.
func encodeOutput(o txOutput) ([]byte, error) {
	return cbor.Encode(&o)
}

// encodeBody CBOR-encodes the full transaction_body.
func encodeBody(b txBody) ([]byte, error) {
	return cbor.Encode(&b)
}

// stakeCredentialCert mirrors the simple two-field certificates:
// [cert_type, stake_credential]. StakeDelegation additionally carries the
// pool hash as a third array element.
type stakeCredentialCert struct {
	_        struct{} `cbor:",toarray"`
	CertType uint8
	Credential []byte
}

type delegationCert struct {
	_          struct{} `cbor:",toarray"`
	CertType   uint8
	Credential []byte
	PoolHash   []byte
}
