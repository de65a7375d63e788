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

// finalizeMaxOutput implements the Max-Output Finalizer (spec §4.5). It is
// a no-op when the request carries no setMax output. res.AllOutputs and
// res.Fee are replaced with their finalized values.
//
// Fee/rounding order: after the max output's ADA total is mutated, min_fee
// is recomputed once against the new output set and any one-lovelace
// drift from that recompute is absorbed back out of the max output itself
// (there being no change output left to absorb it in the common case) —
// rather than trying to match an unspecified bit-exact rounding mode.
func finalizeMaxOutput(res *loopResult, maxOutputIndex int, oracle Oracle, builder Builder) (*loopResult, error) {
	if maxOutputIndex < 0 {
		return res, nil
	}

	outputs := res.AllOutputs
	maxOut := &outputs[maxOutputIndex]
	targetUnit := maxOut.TargetUnit()

	if targetUnit != "lovelace" {
		finalizeTokenMax(outputs, maxOut, targetUnit)
		minAda, err := oracle.MinAda(*maxOut)
		if err != nil {
			return nil, err
		}
		if maxOut.Amount.Cmp(minAda) < 0 {
			maxOut.Amount = new(big.Int).Set(minAda)
		}
		res.AllOutputs = outputs
		return res, nil
	}

	if err := finalizeAdaMax(maxOut, outputs, oracle); err != nil {
		return nil, err
	}
	outputs = dropZeroChange(outputs)
	res.AllOutputs = outputs
	// dropZeroChange copies into a new slice; user outputs keep their index.
	maxOut = &outputs[maxOutputIndex]

	builder.SetOutputs(outputs)
	newFee, err := builder.MinFee()
	if err != nil {
		return nil, err
	}
	delta := new(big.Int).Sub(newFee, res.Fee)
	maxOut.Amount = new(big.Int).Sub(maxOut.Amount, delta)
	if maxOut.Amount.Sign() < 0 {
		return nil, ErrBalanceInsufficient
	}
	res.Fee = newFee

	minAda, err := oracle.MinAda(*maxOut)
	if err != nil {
		return nil, err
	}
	if maxOut.Amount.Cmp(minAda) < 0 {
		return nil, ErrBalanceInsufficient
	}
	return res, nil
}

// finalizeAdaMax handles targetUnit == lovelace: the max output drains
// whatever the ledger balance equation leaves over, per spec §4.5. It
// assigns a provisional maxOut.Amount; its caller, finalizeMaxOutput,
// corrects it for the post-mutation fee recompute.
func finalizeAdaMax(maxOut *Output, outputs []Output, oracle Oracle) error {
	changeIdx := -1
	for i := len(outputs) - 1; i >= 0; i-- {
		if outputs[i].IsChange {
			changeIdx = i
			break
		}
	}

	if changeIdx == -1 {
		// No change output exists to drain (spec §4.5: "If no change
		// exists: M.amount := 0"). The Selection Loop already folded any
		// leftover lovelace into Fee (spec §4.3 step 5's dust burn), so
		// there is nothing left for the max output to claim.
		maxOut.Amount = big.NewInt(0)
		return nil
	}

	change := &outputs[changeIdx]
	if len(change.Assets) == 0 {
		maxOut.Amount = new(big.Int).Add(maxOut.Amount, change.Amount)
		change.Amount = big.NewInt(0)
		return nil
	}

	// Change still carries tokens: it must keep exactly its own min_ada;
	// everything above that moves to the max output.
	changeMinAda, err := oracle.MinAda(*change)
	if err != nil {
		return err
	}
	excess := new(big.Int).Sub(change.Amount, changeMinAda)
	maxOut.Amount = new(big.Int).Add(maxOut.Amount, excess)
	change.Amount = new(big.Int).Set(changeMinAda)
	return nil
}

// finalizeTokenMax moves the entire change quantity of targetUnit into
// maxOut, wherever among the (possibly bundle-split) change outputs it
// currently sits.
func finalizeTokenMax(outputs []Output, maxOut *Output, targetUnit string) {
	var moved *big.Int
	for i := range outputs {
		if !outputs[i].IsChange {
			continue
		}
		for j := range outputs[i].Assets {
			if outputs[i].Assets[j].Unit == targetUnit {
				moved = outputs[i].Assets[j].Quantity
				outputs[i].Assets = append(outputs[i].Assets[:j], outputs[i].Assets[j+1:]...)
				break
			}
		}
		if moved != nil {
			break
		}
	}
	if moved == nil {
		moved = big.NewInt(0)
	}
	if len(maxOut.Assets) == 0 {
		maxOut.Assets = []Amount{{Unit: targetUnit, Quantity: moved}}
		return
	}
	// TODO(txselect): once Composer exposes an in-place coin mutation
	// helper, use it here instead of this direct field assignment; the
	// result is the same.
	maxOut.Assets[0].Quantity = moved
}

// dropZeroChange removes change outputs whose Amount was zeroed out by
// finalizeAdaMax's no-tokens branch.
func dropZeroChange(outputs []Output) []Output {
	out := make([]Output, 0, len(outputs))
	for _, o := range outputs {
		if o.IsChange && len(o.Assets) == 0 && o.Amount != nil && o.Amount.Sign() == 0 {
			continue
		}
		out = append(out, o)
	}
	return out
}
