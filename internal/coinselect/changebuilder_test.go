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

import (
	"math/big"
	"testing"
)

func TestBuildChangeSplitsOnMaxTokensPerOutput(t *testing.T) {
	oracle := newFakeOracle(44, 155_381, 4_310)
	utxos := []UTXO{{
		TxHash: "a1", Address: "addr_wallet",
		Amount: []Amount{
			{Unit: "lovelace", Quantity: big.NewInt(20_000_000)},
			{Unit: "tokA", Quantity: big.NewInt(10)},
			{Unit: "tokB", Quantity: big.NewInt(10)},
			{Unit: "tokC", Quantity: big.NewInt(10)},
		},
	}}
	res, err := buildChange(oracle, utxos, nil, big.NewInt(200_000), nil, big.NewInt(0), "addr_change", 1, big.NewInt(5_000), nil)
	if err != nil {
		t.Fatalf("buildChange: %v", err)
	}
	if len(res.Outputs) != 3 {
		t.Fatalf("Outputs = %d, want 3 (one change output per token, cap=1)", len(res.Outputs))
	}
	for i, c := range res.Outputs {
		if len(c.Output.Assets) != 1 {
			t.Errorf("bundle %d carries %d assets, want 1", i, len(c.Output.Assets))
		}
	}
}

func TestBuildChangeBurnsDustWithoutExtraUTXO(t *testing.T) {
	oracle := newFakeOracle(44, 155_381, 4_310)
	utxos := []UTXO{{
		TxHash: "a1", Address: "addr_wallet",
		Amount: []Amount{{Unit: "lovelace", Quantity: big.NewInt(3_200_700)}},
	}}
	outputs := []Output{addrOutput("addr_receiver", 3_000_000)}
	totalFee := big.NewInt(200_000) // leftover would be 700, well under min_ada

	res, err := buildChange(oracle, utxos, outputs, totalFee, nil, big.NewInt(0), "addr_change", 100, big.NewInt(5_000), nil)
	if err != nil {
		t.Fatalf("buildChange: %v", err)
	}
	if res.Outputs != nil {
		t.Errorf("Outputs = %+v, want nil (dust burned)", res.Outputs)
	}
}

func TestBuildChangePullsExtraUTXOToAvoidDust(t *testing.T) {
	oracle := newFakeOracle(44, 155_381, 4_310)
	used := []UTXO{{
		TxHash: "a1", Address: "addr_wallet",
		Amount: []Amount{{Unit: "lovelace", Quantity: big.NewInt(3_202_000)}},
	}}
	outputs := []Output{addrOutput("addr_receiver", 3_000_000)}
	totalFee := big.NewInt(200_000) // leftover 2_000 minus the change output's own fee, above the dust floor

	extra := UTXO{TxHash: "a2", Address: "addr_wallet", Amount: []Amount{{Unit: "lovelace", Quantity: big.NewInt(5_000_000)}}}
	pulled := false
	pick := func() (UTXO, bool) {
		if pulled {
			return UTXO{}, false
		}
		pulled = true
		return extra, true
	}

	res, err := buildChange(oracle, used, outputs, totalFee, nil, big.NewInt(0), "addr_change", 100, big.NewInt(500), pick)
	if err != nil {
		t.Fatalf("buildChange: %v", err)
	}
	if res.Outputs == nil {
		t.Fatalf("expected a change output once the extra UTXO was pulled in")
	}
	if len(res.UsedUTXOs) != 2 {
		t.Fatalf("UsedUTXOs = %d, want 2 (original + pulled extra)", len(res.UsedUTXOs))
	}
}
