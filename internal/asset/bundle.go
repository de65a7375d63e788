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

package asset

import "math/big"

// Bundle is an ordered multiset of asset amounts: insertion order is
// preserved (spec §4.2: unique_asset_units "preserving first-seen order"),
// while Add/Get give O(1) access by unit.
type Bundle struct {
	order []Unit
	byUnit map[Unit]*big.Int
}

// NewBundle returns an empty Bundle.
func NewBundle() *Bundle {
	return &Bundle{byUnit: make(map[Unit]*big.Int)}
}

// Add accumulates qty into the running total for unit, creating the entry
// (and recording first-seen order) if absent. qty is copied, never aliased.
func (b *Bundle) Add(unit Unit, qty *big.Int) {
	if qty == nil {
		return
	}
	cur, ok := b.byUnit[unit]
	if !ok {
		cur = big.NewInt(0)
		b.byUnit[unit] = cur
		b.order = append(b.order, unit)
	}
	cur.Add(cur, qty)
}

// Sub subtracts qty from the running total for unit, creating the entry if
// absent.
func (b *Bundle) Sub(unit Unit, qty *big.Int) {
	if qty == nil {
		return
	}
	neg := new(big.Int).Neg(qty)
	b.Add(unit, neg)
}

// Get returns the current total for unit, or zero if never touched.
func (b *Bundle) Get(unit Unit) *big.Int {
	if q, ok := b.byUnit[unit]; ok {
		return new(big.Int).Set(q)
	}
	return big.NewInt(0)
}

// Units returns the asset units in first-seen order.
func (b *Bundle) Units() []Unit {
	out := make([]Unit, len(b.order))
	copy(out, b.order)
	return out
}

// NonZero returns the {unit, quantity} pairs with a non-zero quantity, in
// first-seen order. Used to build change-asset vectors (spec §4.3 step 1:
// "drop zero entries").
func (b *Bundle) NonZero() []Amount {
	out := make([]Amount, 0, len(b.order))
	for _, u := range b.order {
		q := b.byUnit[u]
		if q.Sign() != 0 {
			out = append(out, Amount{Unit: u, Quantity: new(big.Int).Set(q)})
		}
	}
	return out
}

// Len returns the number of distinct units ever added (including
// subsequently-zeroed ones).
func (b *Bundle) Len() int {
	return len(b.order)
}
