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

func TestComposeSetMaxTokenLeavesAdaChangeIntact(t *testing.T) {
	oracle := newFakeOracle(44, 155_381, 4_310)
	utxos := []UTXO{{
		TxHash: "a1", OutputIndex: 0, Address: "addr_wallet",
		Amount: []Amount{
			{Unit: "lovelace", Quantity: big.NewInt(20_000_000)},
			{Unit: "tok", Quantity: big.NewInt(500)},
		},
	}}
	addr := "addr_receiver"
	outputs := []Output{{
		Address: &addr,
		Amount:  big.NewInt(2_000_000),
		Assets:  []Amount{{Unit: "tok", Quantity: big.NewInt(0)}},
		SetMax:  true,
	}}

	summary, err := Compose(oracle, testRequest(oracle, utxos, outputs))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if summary.Max == nil {
		t.Fatalf("expected a Max output")
	}
	if len(summary.Max.Assets) != 1 || summary.Max.Assets[0].Quantity.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("Max output should carry the entire tok holding (500), got %+v", summary.Max.Assets)
	}
	// The wallet's only UTXO carries no other tokens, so once tok is
	// moved entirely into the max output's asset list, any change output
	// that remains carries ADA only.
	for _, o := range summary.Outputs {
		if o.IsChange && len(o.Assets) > 0 {
			t.Errorf("change output should have no leftover tok, got %+v", o.Assets)
		}
	}
}
