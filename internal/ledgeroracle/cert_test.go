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
	"math/big"
	"strings"
	"testing"

	"github.com/blinklabs-io/gouroboros/cbor"

	"github.com/blinklabs-io/txselect/internal/coinselect"
)

var testCredential = []byte(strings.Repeat("\xAB", 28))

func TestEncodeCertificateStakeRegistration(t *testing.T) {
	encoded, err := encodeCertificate(
		coinselect.Certificate{Type: coinselect.CertStakeRegistration},
		testCredential,
	)
	if err != nil {
		t.Fatalf("encodeCertificate returned error: %v", err)
	}
	var decoded stakeCredentialCert
	if _, err := cbor.Decode(encoded, &decoded); err != nil {
		t.Fatalf("error decoding encoded cert: %v", err)
	}
	if decoded.CertType != certTagStakeRegistration {
		t.Errorf("expected cert tag %d, got %d", certTagStakeRegistration, decoded.CertType)
	}
	if string(decoded.Credential) != string(testCredential) {
		t.Errorf("credential mismatch")
	}
}

func TestEncodeCertificateStakeDelegation(t *testing.T) {
	poolHash := strings.Repeat("cd", 28)
	encoded, err := encodeCertificate(
		coinselect.Certificate{Type: coinselect.CertStakeDelegation, PoolHash: poolHash},
		testCredential,
	)
	if err != nil {
		t.Fatalf("encodeCertificate returned error: %v", err)
	}
	var decoded delegationCert
	if _, err := cbor.Decode(encoded, &decoded); err != nil {
		t.Fatalf("error decoding encoded cert: %v", err)
	}
	if decoded.CertType != certTagStakeDelegation {
		t.Errorf("expected cert tag %d, got %d", certTagStakeDelegation, decoded.CertType)
	}
	if len(decoded.PoolHash) != 28 {
		t.Errorf("expected 28-byte pool hash, got %d", len(decoded.PoolHash))
	}
}

func TestEncodeCertificateStakeDelegationBadPoolHash(t *testing.T) {
	_, err := encodeCertificate(
		coinselect.Certificate{Type: coinselect.CertStakeDelegation, PoolHash: "zz"},
		testCredential,
	)
	if err == nil {
		t.Fatal("expected error for non-hex pool hash, got nil")
	}
}

func TestEncodeCertificatePoolRegistrationUnsupported(t *testing.T) {
	_, err := encodeCertificate(
		coinselect.Certificate{Type: coinselect.CertStakePoolRegistration},
		testCredential,
	)
	if err == nil {
		t.Fatal("expected error for unsupported pool registration certificate, got nil")
	}
}

// wrapFakeTx builds a minimal [body, witnessSet, isValid, auxData] tx array
// around a body map, mirroring the shape patchCertsAndWithdrawals expects
// from an Apollo-serialized transaction.
func wrapFakeTx(t *testing.T, bodyMap map[uint8]cbor.RawMessage) []byte {
	t.Helper()
	bodyBytes, err := cbor.Encode(&bodyMap)
	if err != nil {
		t.Fatalf("error encoding fake body: %v", err)
	}
	outer := []any{
		cbor.RawMessage(bodyBytes),
		cbor.RawMessage([]byte{0xa0}), // empty map, witness set
		true,
		nil,
	}
	txBytes, err := cbor.Encode(&outer)
	if err != nil {
		t.Fatalf("error encoding fake tx wrapper: %v", err)
	}
	return txBytes
}

func TestPatchCertsAndWithdrawalsAddsCerts(t *testing.T) {
	fee := uint64(200_000)
	feeBytes, err := cbor.Encode(&fee)
	if err != nil {
		t.Fatalf("error encoding fee: %v", err)
	}
	body := map[uint8]cbor.RawMessage{2: cbor.RawMessage(feeBytes)}
	txBytes := wrapFakeTx(t, body)

	certs := []coinselect.Certificate{{Type: coinselect.CertStakeRegistration}}
	patched, err := patchCertsAndWithdrawals(txBytes, certs, testCredential, nil)
	if err != nil {
		t.Fatalf("patchCertsAndWithdrawals returned error: %v", err)
	}

	var outer []cbor.RawMessage
	if _, err := cbor.Decode(patched, &outer); err != nil {
		t.Fatalf("error decoding patched tx: %v", err)
	}
	var bodyMap map[uint8]cbor.RawMessage
	if _, err := cbor.Decode(outer[0], &bodyMap); err != nil {
		t.Fatalf("error decoding patched body: %v", err)
	}
	if _, ok := bodyMap[4]; !ok {
		t.Fatal("expected certs key (4) to be present after patching")
	}
}

func TestPatchCertsAndWithdrawalsAddsWithdrawals(t *testing.T) {
	fee := uint64(200_000)
	feeBytes, err := cbor.Encode(&fee)
	if err != nil {
		t.Fatalf("error encoding fee: %v", err)
	}
	body := map[uint8]cbor.RawMessage{2: cbor.RawMessage(feeBytes)}
	txBytes := wrapFakeTx(t, body)

	withdrawals := []coinselect.Withdrawal{
		{StakeAddress: testAddress, Amount: big.NewInt(1_000_000)},
	}
	patched, err := patchCertsAndWithdrawals(txBytes, nil, testCredential, withdrawals)
	if err != nil {
		t.Fatalf("patchCertsAndWithdrawals returned error: %v", err)
	}

	var outer []cbor.RawMessage
	if _, err := cbor.Decode(patched, &outer); err != nil {
		t.Fatalf("error decoding patched tx: %v", err)
	}
	var bodyMap map[uint8]cbor.RawMessage
	if _, err := cbor.Decode(outer[0], &bodyMap); err != nil {
		t.Fatalf("error decoding patched body: %v", err)
	}
	if _, ok := bodyMap[5]; !ok {
		t.Fatal("expected withdrawals key (5) to be present after patching")
	}
	// Fee key must survive untouched.
	if _, ok := bodyMap[2]; !ok {
		t.Fatal("expected fee key (2) to survive patching")
	}
}
