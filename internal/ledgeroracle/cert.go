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

package ledgeroracle

import (
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"

	"github.com/blinklabs-io/txselect/internal/coinselect"
)

// Real Shelley certificate tags (CDDL cert_type), used only for the three
// variants this package supports encoding.
const (
	certTagStakeRegistration   = 0
	certTagStakeDeregistration = 1
	certTagStakeDelegation     = 2
)

// encodeCertificate CBOR-encodes a single certificate against
// credential, the wallet's derived stake credential (spec §3: one
// credential per composition). Pool registration certificates are
// recognized by coinselect's validation but this package has no grounded
// Apollo v1 pool-registration encoder, so they stop here with a named
// error rather than emitting a fabricated encoding; pool registration via
// this oracle is a known gap (see DESIGN.md).
func encodeCertificate(c coinselect.Certificate, credential []byte) ([]byte, error) {
	switch c.Type {
	case coinselect.CertStakeRegistration:
		cert := stakeCredentialCert{CertType: certTagStakeRegistration, Credential: credential}
		return cbor.Encode(&cert)
	case coinselect.CertStakeDeregistration:
		cert := stakeCredentialCert{CertType: certTagStakeDeregistration, Credential: credential}
		return cbor.Encode(&cert)
	case coinselect.CertStakeDelegation:
		poolHash, err := hex.DecodeString(c.PoolHash)
		if err != nil {
			return nil, fmt.Errorf("error decoding pool hash %q: %w", c.PoolHash, err)
		}
		cert := delegationCert{CertType: certTagStakeDelegation, Credential: credential, PoolHash: poolHash}
		return cbor.Encode(&cert)
	default:
		return nil, fmt.Errorf("ledgeroracle: no certificate encoder for type %v", c.Type)
	}
}

// patchCertsAndWithdrawals injects the certificate and withdrawal fields
// into an already-Apollo-serialized transaction. Apollo v1's builder chain
// (as exercised throughout the example pack) never constructs certificates
// or withdrawals itself, so rather than guess at an unconfirmed API this
// performs the same raw-CBOR-array surgery wrapTxOutput-style code in the
// pack uses elsewhere: decode the outer [body, witnessSet, isValid,
// auxData] tx array, decode the body map, set keys 4 (certs) and 5
// (withdrawals), and re-encode both levels.
func patchCertsAndWithdrawals(
	txBytes []byte,
	certs []coinselect.Certificate,
	credential []byte,
	withdrawals []coinselect.Withdrawal,
) ([]byte, error) {
	var outer []cbor.RawMessage
	if _, err := cbor.Decode(txBytes, &outer); err != nil {
		return nil, fmt.Errorf("error decoding tx wrapper: %w", err)
	}
	if len(outer) == 0 {
		return nil, fmt.Errorf("ledgeroracle: empty tx wrapper, cannot patch certs/withdrawals")
	}

	var bodyMap map[uint8]cbor.RawMessage
	if _, err := cbor.Decode(outer[0], &bodyMap); err != nil {
		return nil, fmt.Errorf("error decoding tx body map: %w", err)
	}

	if len(certs) > 0 {
		var encodedCerts []cbor.RawMessage
		for _, c := range certs {
			encoded, err := encodeCertificate(c, credential)
			if err != nil {
				return nil, err
			}
			encodedCerts = append(encodedCerts, cbor.RawMessage(encoded))
		}
		certsBytes, err := cbor.Encode(&encodedCerts)
		if err != nil {
			return nil, fmt.Errorf("error encoding certs list: %w", err)
		}
		bodyMap[4] = cbor.RawMessage(certsBytes)
	}

	if len(withdrawals) > 0 {
		wmap := make(map[string]uint64, len(withdrawals))
		for _, w := range withdrawals {
			amt := uint64(0)
			if w.Amount != nil {
				amt = w.Amount.Uint64()
			}
			wmap[w.StakeAddress] = amt
		}
		wBytes, err := cbor.Encode(&wmap)
		if err != nil {
			return nil, fmt.Errorf("error encoding withdrawals map: %w", err)
		}
		bodyMap[5] = cbor.RawMessage(wBytes)
	}

	newBodyBytes, err := cbor.Encode(&bodyMap)
	if err != nil {
		return nil, fmt.Errorf("error re-encoding tx body map: %w", err)
	}
	outer[0] = cbor.RawMessage(newBodyBytes)

	patched, err := cbor.Encode(&outer)
	if err != nil {
		return nil, fmt.Errorf("error re-encoding tx wrapper: %w", err)
	}
	return patched, nil
}
