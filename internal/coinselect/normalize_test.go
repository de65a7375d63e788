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
	"errors"
	"math/big"
	"testing"
)

func TestNormalizeBumpsBelowMinAdaTokenOutput(t *testing.T) {
	oracle := newFakeOracle(44, 155_381, 4_310)
	addr := "addr1"
	outputs := []Output{{
		Address: &addr,
		Amount:  big.NewInt(1), // far below min_ada for a token-bearing output
		Assets:  []Amount{{Unit: "tok", Quantity: big.NewInt(5)}},
	}}

	out, err := normalize(outputs, oracle)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	minAda, _ := oracle.MinAda(out[0])
	if out[0].Amount.Cmp(minAda) != 0 {
		t.Errorf("Amount = %v, want bumped to min_ada %v", out[0].Amount, minAda)
	}
}

func TestNormalizeRejectsBelowMinAdaAdaOnlyOutput(t *testing.T) {
	oracle := newFakeOracle(44, 155_381, 4_310)
	addr := "addr1"
	outputs := []Output{{Address: &addr, Amount: big.NewInt(1)}}

	_, err := normalize(outputs, oracle)
	if !errors.Is(err, ErrValueTooSmall) {
		t.Fatalf("err = %v, want ErrValueTooSmall", err)
	}
}

func TestNormalizeZeroesSetMaxTarget(t *testing.T) {
	oracle := newFakeOracle(44, 155_381, 4_310)
	addr := "addr1"

	adaMax := []Output{{Address: &addr, Amount: big.NewInt(999), SetMax: true}}
	out, err := normalize(adaMax, oracle)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out[0].Amount.Sign() != 0 {
		t.Errorf("ada setMax output Amount = %v, want 0", out[0].Amount)
	}

	tokenMax := []Output{{
		Address: &addr,
		Amount:  big.NewInt(2_000_000),
		Assets:  []Amount{{Unit: "tok", Quantity: big.NewInt(999)}},
		SetMax:  true,
	}}
	out, err = normalize(tokenMax, oracle)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out[0].Assets[0].Quantity.Sign() != 0 {
		t.Errorf("token setMax output Assets[0].Quantity = %v, want 0", out[0].Assets[0].Quantity)
	}
}
