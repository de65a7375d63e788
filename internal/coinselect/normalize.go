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

// normalize adjusts user-requested outputs to satisfy per-output min_ada and
// zeroes the setMax target field (spec §4.1). Missing addresses are left as
// nil; the placeholder substitution for size/fee math happens at the
// Builder boundary (Output.ResolvedAddress), not here.
func normalize(outputs []Output, oracle Oracle) ([]Output, error) {
	out := make([]Output, len(outputs))
	for i, o := range outputs {
		prepared := o

		// Amount may be absent in precompose mode (spec §4.7); treat a
		// missing amount as zero for the purposes of the min_ada bump
		// check below, same as the source does for "non-final compose".
		amount := prepared.Amount
		if amount == nil {
			amount = big.NewInt(0)
		}

		hypothetical := prepared
		hypothetical.Amount = amount
		minOutputAmount, err := oracle.MinAda(hypothetical)
		if err != nil {
			return nil, err
		}

		hasTokens := len(prepared.Assets) > 0

		if hasTokens && amount.Cmp(minOutputAmount) < 0 {
			amount = new(big.Int).Set(minOutputAmount)
			prepared.Amount = amount
		} else if prepared.Amount == nil {
			prepared.Amount = amount
		}

		if prepared.SetMax {
			if hasTokens {
				prepared.Assets = cloneAssets(prepared.Assets)
				prepared.Assets[0].Quantity = big.NewInt(0)
			} else {
				prepared.Amount = big.NewInt(0)
			}
		} else if !hasTokens && o.Amount != nil && o.Amount.Cmp(minOutputAmount) < 0 {
			// User supplied an explicit ADA-only amount below min_ada.
			return nil, ErrValueTooSmall
		}

		out[i] = prepared
	}
	return out, nil
}

func cloneAssets(in []Amount) []Amount {
	out := make([]Amount, len(in))
	for i, a := range in {
		out[i] = Amount{Unit: a.Unit, Quantity: new(big.Int).Set(a.Quantity)}
	}
	return out
}
