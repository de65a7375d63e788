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

	"github.com/blinklabs-io/txselect/internal/asset"
)

// OutputCost pairs a constructed output with the oracle's fee/min-ada
// quotes for it (spec §4.3).
type OutputCost struct {
	Output          Output
	OutputFee       *big.Int
	MinOutputAmount *big.Int
}

// changeResult is buildChange's return value: Outputs is nil for the "dust
// burn" case (spec §4.3 step 5), and UsedUTXOs reflects any extra UTXOs
// pulled in via pickExtraUTXO during the recursive dust-avoidance pass.
type changeResult struct {
	Outputs   []OutputCost
	UsedUTXOs []UTXO
}

// buildChange implements the Change Builder (spec §4.3). outputs must be
// the prepared *user* outputs only (never includes change); totalFee is
// the running total-fee estimate the Selection Loop has computed so far.
// withdrawals and depositNet fold into the available-lovelace figure the
// same way they do in the Selection Loop's own satisfaction test (spec
// §3's balance equation treats both as input-side funds).
func buildChange(
	oracle Oracle,
	usedUTXOs []UTXO,
	outputs []Output,
	totalFee *big.Int,
	withdrawals []Withdrawal,
	depositNet *big.Int,
	changeAddress string,
	maxTokensPerOutput uint32,
	dustFloor *big.Int,
	pickExtraUTXO func() (UTXO, bool),
) (*changeResult, error) {
	// Step 1: change_assets, tokens only (lovelace handled separately below).
	// Only surpluses become change; a deficit is left for the Selection
	// Loop's satisfaction test to report.
	changeBundle := asset.NewBundle()
	for _, u := range uniqueAssetUnits(usedUTXOs) {
		if u == asset.Lovelace {
			continue
		}
		delta := new(big.Int).Sub(
			sumInputs(usedUTXOs, string(u)),
			sumOutputs(outputs, string(u)),
		)
		changeBundle.Add(u, delta)
	}
	var tokenAssets []Amount
	for _, a := range changeBundle.NonZero() {
		if a.Quantity.Sign() < 0 {
			continue
		}
		tokenAssets = append(tokenAssets, Amount{Unit: string(a.Unit), Quantity: a.Quantity})
	}

	// Steps 2-3: build one bundle, or split into ceil(n/cap) bundles if
	// the token count reaches the cap.
	var bundles [][]Amount
	if maxTokensPerOutput > 0 && uint32(len(tokenAssets)) >= maxTokensPerOutput {
		chunkSize := int(maxTokensPerOutput)
		for i := 0; i < len(tokenAssets); i += chunkSize {
			end := i + chunkSize
			if end > len(tokenAssets) {
				end = len(tokenAssets)
			}
			bundles = append(bundles, tokenAssets[i:end])
		}
	} else {
		bundles = [][]Amount{tokenAssets}
	}

	costs := make([]OutputCost, len(bundles))
	for i, bundle := range bundles {
		candidate := Output{
			Address:  &changeAddress,
			Amount:   big.NewInt(0),
			Assets:   bundle,
			IsChange: true,
		}
		minAda, err := oracle.MinAda(candidate)
		if err != nil {
			return nil, err
		}
		candidate.Amount = new(big.Int).Set(minAda)
		fee, err := oracle.FeeForOutput(candidate)
		if err != nil {
			return nil, err
		}
		costs[i] = OutputCost{Output: candidate, OutputFee: fee, MinOutputAmount: minAda}
	}

	totalOutputFees := big.NewInt(0)
	for _, c := range costs {
		totalOutputFees.Add(totalOutputFees, c.OutputFee)
	}

	// Step 4.
	changeAda := new(big.Int).Add(sumInputs(usedUTXOs, "lovelace"), sumWithdrawals(withdrawals))
	changeAda.Sub(changeAda, depositNet)
	changeAda.Sub(changeAda, sumOutputs(outputs, "lovelace"))
	changeAda.Sub(changeAda, totalFee)
	changeAda.Sub(changeAda, totalOutputFees)

	last := &costs[len(costs)-1]

	// Step 5.
	needed := len(tokenAssets) > 0 || changeAda.Cmp(last.MinOutputAmount) >= 0
	if !needed {
		if pickExtraUTXO != nil && changeAda.Cmp(dustFloor) >= 0 {
			picked, ok := pickExtraUTXO()
			if ok {
				grown := append(append([]UTXO{}, usedUTXOs...), picked)
				return buildChange(oracle, grown, outputs, totalFee, withdrawals, depositNet, changeAddress, maxTokensPerOutput, dustFloor, pickExtraUTXO)
			}
		}
		return &changeResult{Outputs: nil, UsedUTXOs: usedUTXOs}, nil
	}

	// Step 6.
	if changeAda.Cmp(last.MinOutputAmount) < 0 {
		changeAda = new(big.Int).Set(last.MinOutputAmount)
	}
	last.Output.Amount = changeAda

	return &changeResult{Outputs: costs, UsedUTXOs: usedUTXOs}, nil
}
