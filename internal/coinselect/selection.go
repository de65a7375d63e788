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
	"sort"

	"github.com/blinklabs-io/txselect/internal/asset"
)

// loopResult is the Selection Loop's (spec §4.4) converged state, handed
// to the Max-Output Finalizer.
type loopResult struct {
	Used       []UTXO
	AllOutputs []Output // prepared user outputs followed by change outputs
	Fee        *big.Int
	DepositNet *big.Int
}

// selectionParams bundles the loop's fixed inputs so its signature doesn't
// grow every time a new tunable is added.
type selectionParams struct {
	Oracle             Oracle
	Builder            Builder
	UTXOs              []UTXO
	PreparedOutputs    []Output
	Certificates       []Certificate
	Withdrawals        []Withdrawal
	ChangeAddress      string
	MaxTokensPerOutput uint32
	DustFloor          *big.Int
	KeyDeposit         *big.Int
	PoolDeposit        *big.Int
	TTL                *uint64
	// MaxOutput is the at-most-one setMax output, already present (by
	// value) inside PreparedOutputs; its index locates it there.
	MaxOutputIndex int // -1 if none
	// PickExtraUTXO overrides the default largest-remaining-lovelace
	// chooser (spec §9 "Random pick_extra_utxo"); nil uses the default.
	PickExtraUTXO func(candidates []UTXO) (UTXO, bool)
}

// defaultPickExtraUTXO is the production Change Builder picker: largest
// remaining lovelace balance among the candidates still in `remaining`.
func defaultPickExtraUTXO(candidates []UTXO) (UTXO, bool) {
	if len(candidates) == 0 {
		return UTXO{}, false
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Lovelace().Cmp(candidates[best].Lovelace()) > 0 {
			best = i
		}
	}
	return candidates[best], true
}

// runSelectionLoop implements the Selection Loop (spec §4.4), the
// centerpiece fixed-point iteration coupling fee, change, and input
// selection.
func runSelectionLoop(p selectionParams) (*loopResult, error) {
	targetUnit := asset.Unit("lovelace")
	if p.MaxOutputIndex >= 0 {
		targetUnit = asset.Unit(p.PreparedOutputs[p.MaxOutputIndex].TargetUnit())
	}

	var used, remaining []UTXO
	if p.MaxOutputIndex >= 0 {
		for _, u := range p.UTXOs {
			if u.QuantityOf(string(targetUnit)).Sign() > 0 {
				used = append(used, u)
			} else {
				remaining = append(remaining, u)
			}
		}
	} else {
		remaining = append(remaining, p.UTXOs...)
	}

	sort.SliceStable(remaining, func(i, j int) bool {
		ti := remaining[i].QuantityOf(string(targetUnit))
		tj := remaining[j].QuantityOf(string(targetUnit))
		if c := ti.Cmp(tj); c != 0 {
			return c > 0
		}
		return remaining[i].Lovelace().Cmp(remaining[j].Lovelace()) > 0
	})

	chooser := p.PickExtraUTXO
	if chooser == nil {
		chooser = defaultPickExtraUTXO
	}
	pickExtraUTXO := func() (UTXO, bool) {
		if len(remaining) == 0 {
			return UTXO{}, false
		}
		picked, ok := chooser(remaining)
		if !ok {
			return UTXO{}, false
		}
		for i, u := range remaining {
			if u.ID() == picked.ID() {
				remaining = append(remaining[:i], remaining[i+1:]...)
				return picked, true
			}
		}
		return UTXO{}, false
	}

	maxIterations := len(p.UTXOs) + 1
	var allOutputs []Output
	var totalFee *big.Int
	var depositNet *big.Int

	for iter := 0; ; iter++ {
		if iter > maxIterations {
			return nil, ErrBalanceInsufficient
		}

		// Step 1: apply used inputs (adding only the new ones).
		for _, u := range used {
			p.Builder.AddInput(u)
		}
		if err := p.Builder.SetCertificates(p.Certificates); err != nil {
			return nil, err
		}
		p.Builder.SetWithdrawals(p.Withdrawals)
		p.Builder.SetTTL(p.TTL)
		// No outputs yet: Step 4's min_fee covers inputs/certs/withdrawals
		// only, and Step 2's per-output fees are added on top of it.
		p.Builder.SetOutputs(nil)

		// Step 2.
		totalUserFee := big.NewInt(0)
		for _, o := range p.PreparedOutputs {
			f, err := p.Oracle.FeeForOutput(o)
			if err != nil {
				return nil, err
			}
			totalUserFee.Add(totalUserFee, f)
		}

		// Step 3.
		var err error
		depositNet, err = requiredDeposit(p.Certificates, p.KeyDeposit, p.PoolDeposit)
		if err != nil {
			return nil, err
		}

		// Step 4.
		minFeeBase, err := p.Builder.MinFee()
		if err != nil {
			return nil, err
		}
		runningFee := new(big.Int).Add(minFeeBase, totalUserFee)

		// Step 5.
		changeRes, err := buildChange(
			p.Oracle,
			used,
			p.PreparedOutputs,
			runningFee,
			p.Withdrawals,
			depositNet,
			p.ChangeAddress,
			p.MaxTokensPerOutput,
			p.DustFloor,
			pickExtraUTXO,
		)
		if err != nil {
			return nil, err
		}
		used = changeRes.UsedUTXOs
		for _, u := range used {
			p.Builder.AddInput(u)
		}

		var changeOutputs []Output
		for _, c := range changeRes.Outputs {
			changeOutputs = append(changeOutputs, c.Output)
		}
		allOutputs = append(append([]Output{}, p.PreparedOutputs...), changeOutputs...)
		p.Builder.SetOutputs(allOutputs)

		// Step 6.
		totalFee, err = p.Builder.MinFee()
		if err != nil {
			return nil, err
		}
		if len(changeRes.Outputs) == 0 {
			// Dust burn (spec §4.3 step 5): the Change Builder found no
			// output worth creating, so whatever lovelace is left over
			// after outputs becomes additional fee rather than vanishing.
			// Only fold it in once it actually covers the base min_fee —
			// early iterations with too few inputs selected also hit this
			// branch (buildChange has nothing to build yet), and there the
			// leftover is negative; folding it in then would make the
			// satisfaction test pass without ever selecting a real input.
			leftoverFee := new(big.Int).Add(sumInputs(used, "lovelace"), sumWithdrawals(p.Withdrawals))
			leftoverFee.Sub(leftoverFee, depositNet)
			leftoverFee.Sub(leftoverFee, sumOutputs(allOutputs, "lovelace"))
			if leftoverFee.Cmp(totalFee) >= 0 {
				totalFee = leftoverFee
			}
		}

		// Step 7: satisfaction test over every asset unit either held or owed.
		unitsToCheck := asset.NewBundle()
		for _, u := range used {
			for _, a := range u.Amount {
				unitsToCheck.Add(asset.Unit(a.Unit), big.NewInt(0))
			}
		}
		for _, o := range allOutputs {
			for _, a := range o.Assets {
				unitsToCheck.Add(asset.Unit(a.Unit), big.NewInt(0))
			}
		}

		var unsatisfied []asset.Unit
		for _, u := range unitsToCheck.Units() {
			if u == asset.Lovelace {
				continue
			}
			in := sumInputs(used, string(u))
			out := sumOutputs(allOutputs, string(u))
			if in.Cmp(out) < 0 {
				unsatisfied = append(unsatisfied, u)
			}
		}

		lhs := new(big.Int).Add(sumInputs(used, "lovelace"), sumWithdrawals(p.Withdrawals))
		lhs.Sub(lhs, depositNet)
		rhs := new(big.Int).Add(sumOutputs(allOutputs, "lovelace"), totalFee)
		// A transaction must spend at least one input, even when a refund or
		// withdrawal alone would cover the outputs and fee.
		lovelaceUnsatisfied := lhs.Cmp(rhs) < 0 || len(used) == 0

		// Step 8.
		if len(unsatisfied) == 0 && !lovelaceUnsatisfied {
			break
		}

		// Step 9.
		assetToFill := asset.Lovelace
		if !lovelaceUnsatisfied {
			assetToFill = unsatisfied[0]
		}
		idx := -1
		for i, u := range remaining {
			if u.QuantityOf(string(assetToFill)).Sign() > 0 {
				idx = i
				break
			}
		}
		// Step 10.
		if idx == -1 {
			return nil, ErrBalanceInsufficient
		}
		used = append(used, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	return &loopResult{
		Used:       used,
		AllOutputs: allOutputs,
		Fee:        totalFee,
		DepositNet: depositNet,
	}, nil
}
