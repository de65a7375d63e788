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

// sumInputs returns the total quantity of unit across utxos.
func sumInputs(utxos []UTXO, unit string) *big.Int {
	total := big.NewInt(0)
	for _, u := range utxos {
		total.Add(total, u.QuantityOf(unit))
	}
	return total
}

// sumOutputs returns the total quantity of unit across outputs. Lovelace
// amounts and token assets both flow through here.
func sumOutputs(outputs []Output, unit string) *big.Int {
	total := big.NewInt(0)
	for _, o := range outputs {
		if unit == "lovelace" {
			if o.Amount != nil {
				total.Add(total, o.Amount)
			}
			continue
		}
		for _, a := range o.Assets {
			if a.Unit == unit {
				total.Add(total, a.Quantity)
			}
		}
	}
	return total
}

// uniqueAssetUnits returns every asset unit carried by utxos (including
// lovelace), preserving first-seen order (spec §4.2).
func uniqueAssetUnits(utxos []UTXO) []asset.Unit {
	seen := asset.NewBundle()
	for _, u := range utxos {
		for _, a := range u.Amount {
			seen.Add(asset.Unit(a.Unit), big.NewInt(0))
		}
	}
	return seen.Units()
}

// requiredDeposit computes the signed net deposit across certs (spec §3):
// StakeRegistration +keyDeposit, StakeDeregistration -keyDeposit,
// StakeDelegation 0, StakePoolRegistration +poolDeposit.
func requiredDeposit(certs []Certificate, keyDeposit, poolDeposit *big.Int) (*big.Int, error) {
	total := big.NewInt(0)
	for _, c := range certs {
		switch c.Type {
		case CertStakeRegistration:
			total.Add(total, keyDeposit)
		case CertStakeDeregistration:
			total.Sub(total, keyDeposit)
		case CertStakeDelegation:
			// no deposit
		case CertStakePoolRegistration:
			total.Add(total, poolDeposit)
		default:
			return nil, ErrUnsupportedCertificateType
		}
	}
	return total, nil
}
