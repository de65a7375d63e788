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

	"github.com/blinklabs-io/txselect/internal/coinselect"
)

// testAddress is the project's configured placeholder address (a valid
// mainnet base address: payment key hash + stake key hash), reused here so
// these tests exercise the real Apollo address codec end to end.
const testAddress = "addr1q8n6j5eap0nch4kyehha3fhfhvr80z9a7pgrfw9qlfarqjvxp2ypxl3s3x8kxh4h9vw4g6vtxusj5lwlq7mx2as5g3sq07qg2y"

const testPolicyId = "f0ff48bbb7bbe9d59a40f04c73995d7fb1e3355b316442fb53158bd2"
const testAssetName = "74657374746f6b656e" // "testtoken"

func TestAddressBytesLength(t *testing.T) {
	raw, err := addressBytes(testAddress)
	if err != nil {
		t.Fatalf("addressBytes returned error: %v", err)
	}
	// 1 header byte + 28-byte payment hash + 28-byte staking hash
	if len(raw) != 57 {
		t.Errorf("expected 57-byte base address, got %d", len(raw))
	}
}

func TestAddressBytesInvalid(t *testing.T) {
	if _, err := addressBytes("not-an-address"); err == nil {
		t.Fatal("expected error decoding invalid address, got nil")
	}
}

func TestToTxValueAdaOnly(t *testing.T) {
	out := coinselect.Output{Amount: big.NewInt(5_000_000)}
	v, err := toTxValue(out)
	if err != nil {
		t.Fatalf("toTxValue returned error: %v", err)
	}
	if v.Coin != 5_000_000 {
		t.Errorf("expected coin 5000000, got %d", v.Coin)
	}
	if v.Assets != nil {
		t.Errorf("expected nil asset map for ada-only output, got %v", v.Assets)
	}
}

func TestToTxValueWithAssets(t *testing.T) {
	unit := testPolicyId + testAssetName
	out := coinselect.Output{
		Amount: big.NewInt(2_000_000),
		Assets: []coinselect.Amount{
			{Unit: unit, Quantity: big.NewInt(42)},
		},
	}
	v, err := toTxValue(out)
	if err != nil {
		t.Fatalf("toTxValue returned error: %v", err)
	}
	qty, ok := v.Assets[testPolicyId][testAssetName]
	if !ok {
		t.Fatalf("expected policy/name entry in asset map, got %v", v.Assets)
	}
	if qty != 42 {
		t.Errorf("expected quantity 42, got %d", qty)
	}
}

func TestToTxValueRejectsMalformedUnit(t *testing.T) {
	out := coinselect.Output{
		Amount: big.NewInt(1_000_000),
		Assets: []coinselect.Amount{
			{Unit: "not-hex", Quantity: big.NewInt(1)},
		},
	}
	if _, err := toTxValue(out); err == nil {
		t.Fatal("expected error for malformed asset unit, got nil")
	}
}

func TestToTxOutputUsesPlaceholderWhenAddressMissing(t *testing.T) {
	out := coinselect.Output{Amount: big.NewInt(1_500_000)}
	txOut, err := toTxOutput(out, testAddress)
	if err != nil {
		t.Fatalf("toTxOutput returned error: %v", err)
	}
	want, err := addressBytes(testAddress)
	if err != nil {
		t.Fatalf("addressBytes returned error: %v", err)
	}
	if string(txOut.Address) != string(want) {
		t.Errorf("expected placeholder address bytes to be used")
	}
}

func TestMinAdaGrowsWithAssetCount(t *testing.T) {
	oracle := New(44, 155_381, 4_310)

	noAssets := coinselect.Output{Amount: big.NewInt(0)}
	minNoAssets, err := oracle.MinAda(noAssets)
	if err != nil {
		t.Fatalf("MinAda returned error: %v", err)
	}

	withAssets := coinselect.Output{
		Amount: big.NewInt(0),
		Assets: []coinselect.Amount{
			{Unit: testPolicyId + testAssetName, Quantity: big.NewInt(1)},
		},
	}
	minWithAssets, err := oracle.MinAda(withAssets)
	if err != nil {
		t.Fatalf("MinAda returned error: %v", err)
	}

	if minWithAssets.Cmp(minNoAssets) <= 0 {
		t.Errorf(
			"expected min_ada to grow with asset count: no-assets=%s with-assets=%s",
			minNoAssets, minWithAssets,
		)
	}
}

func TestMinAdaIgnoresCoinValue(t *testing.T) {
	oracle := New(44, 155_381, 4_310)

	small := coinselect.Output{Amount: big.NewInt(1)}
	large := coinselect.Output{Amount: big.NewInt(1_000_000_000)}

	minSmall, err := oracle.MinAda(small)
	if err != nil {
		t.Fatalf("MinAda returned error: %v", err)
	}
	minLarge, err := oracle.MinAda(large)
	if err != nil {
		t.Fatalf("MinAda returned error: %v", err)
	}
	if minSmall.Cmp(minLarge) != 0 {
		t.Errorf("expected min_ada to be independent of coin value, got %s vs %s", minSmall, minLarge)
	}
}

func TestFeeForInputPositive(t *testing.T) {
	oracle := New(44, 155_381, 4_310)
	input := coinselect.UTXO{
		TxHash:      strings.Repeat("ab", 32),
		OutputIndex: 0,
	}
	fee, err := oracle.FeeForInput(testAddress, input)
	if err != nil {
		t.Fatalf("FeeForInput returned error: %v", err)
	}
	if fee.Sign() <= 0 {
		t.Errorf("expected positive marginal fee, got %s", fee)
	}
}

func TestFeeForOutputGrowsWithAssets(t *testing.T) {
	oracle := New(44, 155_381, 4_310)

	addr := testAddress
	base := coinselect.Output{Address: &addr, Amount: big.NewInt(1_000_000)}
	withAsset := coinselect.Output{
		Address: &addr,
		Amount:  big.NewInt(1_000_000),
		Assets: []coinselect.Amount{
			{Unit: testPolicyId + testAssetName, Quantity: big.NewInt(1)},
		},
	}

	feeBase, err := oracle.FeeForOutput(base)
	if err != nil {
		t.Fatalf("FeeForOutput returned error: %v", err)
	}
	feeWithAsset, err := oracle.FeeForOutput(withAsset)
	if err != nil {
		t.Fatalf("FeeForOutput returned error: %v", err)
	}
	if feeWithAsset.Cmp(feeBase) <= 0 {
		t.Errorf("expected fee to grow with asset count: base=%s withAsset=%s", feeBase, feeWithAsset)
	}
}

func TestValueSizeMatchesEncodedValue(t *testing.T) {
	oracle := New(44, 155_381, 4_310)
	out := coinselect.Output{Amount: big.NewInt(3_000_000)}
	size, err := oracle.ValueSize(out)
	if err != nil {
		t.Fatalf("ValueSize returned error: %v", err)
	}
	if size <= 0 {
		t.Errorf("expected positive value size, got %d", size)
	}
}

func TestDeriveStakeCredentialLength(t *testing.T) {
	oracle := New(44, 155_381, 4_310)
	cred, err := oracle.DeriveStakeCredential([]byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("DeriveStakeCredential returned error: %v", err)
	}
	if len(cred) != 28 {
		t.Errorf("expected 28-byte Blake2b-224 credential, got %d bytes", len(cred))
	}
}
