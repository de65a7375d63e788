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
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/Salvionied/apollo"
	serAddress "github.com/Salvionied/apollo/serialization/Address"
	"github.com/Salvionied/apollo/serialization/UTxO"

	"github.com/blinklabs-io/gouroboros/cbor"

	"github.com/blinklabs-io/txselect/internal/asset"
	"github.com/blinklabs-io/txselect/internal/coinselect"
	"github.com/blinklabs-io/txselect/internal/storage"
)

// ledgerBuilder is LedgerOracle's companion coinselect.Builder (spec §5:
// never shared across compositions). Inputs/outputs accumulate by value;
// MinFee measures a lightweight local encoding on every call, while
// Serialize drives the real Apollo builder chain exactly once, after the
// loop has already converged on a balanced set of inputs/outputs/fee.
type ledgerBuilder struct {
	oracle        *LedgerOracle
	changeAddress string

	inputs      []coinselect.UTXO
	outputs     []coinselect.Output
	certs       []coinselect.Certificate
	withdrawals []coinselect.Withdrawal
	ttl         *uint64
	fee         *big.Int
	stakeCred   []byte
}

func (b *ledgerBuilder) AddInput(input coinselect.UTXO) bool {
	for _, existing := range b.inputs {
		if existing.ID() == input.ID() {
			return false
		}
	}
	b.inputs = append(b.inputs, input)
	return true
}

func (b *ledgerBuilder) SetOutputs(outputs []coinselect.Output) {
	b.outputs = outputs
}

func (b *ledgerBuilder) SetCertificates(certs []coinselect.Certificate) error {
	b.certs = certs
	return nil
}

func (b *ledgerBuilder) SetWithdrawals(withdrawals []coinselect.Withdrawal) {
	b.withdrawals = withdrawals
}

func (b *ledgerBuilder) SetTTL(ttl *uint64) {
	b.ttl = ttl
}

func (b *ledgerBuilder) SetFee(fee *big.Int) {
	b.fee = fee
}

func (b *ledgerBuilder) SetStakeCredential(credential []byte) {
	b.stakeCred = credential
}

func (b *ledgerBuilder) Inputs() []coinselect.UTXO {
	out := make([]coinselect.UTXO, len(b.inputs))
	copy(out, b.inputs)
	return out
}

// localBody assembles this builder's current state into the local CDDL-ish
// model used for repeated size/fee measurement (see txmodel.go).
func (b *ledgerBuilder) localBody(fee uint64) (txBody, error) {
	body := txBody{Fee: fee, TTL: b.ttl}

	for _, in := range b.inputs {
		txIdBytes, err := hex.DecodeString(in.TxHash)
		if err != nil {
			return txBody{}, fmt.Errorf("error decoding tx hash %q: %w", in.TxHash, err)
		}
		body.Inputs = append(body.Inputs, txInputRef{TxId: txIdBytes, Index: in.OutputIndex})
	}

	for _, o := range b.outputs {
		txOut, err := toTxOutput(o, b.changeAddress)
		if err != nil {
			return txBody{}, err
		}
		body.Outputs = append(body.Outputs, txOut)
	}

	for _, c := range b.certs {
		encoded, err := encodeCertificate(c, b.stakeCred)
		if err != nil {
			return txBody{}, err
		}
		body.Certs = append(body.Certs, cbor.RawMessage(encoded))
	}

	if len(b.withdrawals) > 0 {
		body.Withdrawals = make(map[string]uint64, len(b.withdrawals))
		for _, w := range b.withdrawals {
			amt := uint64(0)
			if w.Amount != nil {
				amt = w.Amount.Uint64()
			}
			body.Withdrawals[w.StakeAddress] = amt
		}
	}

	return body, nil
}

// MinFee implements coinselect.Builder by measuring the local body
// encoding at the builder's current state, with fee pinned to zero (its
// own encoded size is stable to within a byte or two across plausible fee
// magnitudes, well under the loop's convergence granularity).
func (b *ledgerBuilder) MinFee() (*big.Int, error) {
	body, err := b.localBody(0)
	if err != nil {
		return nil, err
	}
	encoded, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding tx body: %w", err)
	}
	size := big.NewInt(int64(len(encoded)))
	fee := new(big.Int).Mul(b.oracle.FeeA, size)
	fee.Add(fee, b.oracle.FeeB)
	return fee, nil
}

// Serialize implements coinselect.Builder. It is called once per
// composition (spec §4, after the Selection Loop and Max-Output Finalizer
// have converged), so it is the only place this builder drives a real,
// balance-checked Apollo transaction instead of the local size model.
func (b *ledgerBuilder) Serialize() ([]byte, error) {
	if b.fee == nil {
		return nil, fmt.Errorf("ledgeroracle: Serialize called before SetFee")
	}

	changeAddr, err := serAddress.DecodeAddress(b.changeAddress)
	if err != nil {
		return nil, fmt.Errorf("error decoding change address: %w", err)
	}

	loadedUtxos := make([]UTxO.UTxO, 0, len(b.inputs))
	for _, in := range b.inputs {
		storageId := fmt.Sprintf("%s.%d", in.TxHash, in.OutputIndex)
		raw, err := storage.GetStorage().GetUtxoById(storageId)
		if err != nil {
			return nil, fmt.Errorf("error loading stored UTxO %s: %w", in.ID(), err)
		}
		var utxo UTxO.UTxO
		if _, err := cbor.Decode(raw, &utxo); err != nil {
			return nil, fmt.Errorf("error decoding stored UTxO %s: %w", in.ID(), err)
		}
		loadedUtxos = append(loadedUtxos, utxo)
	}

	cc := apollo.NewEmptyBackend()
	apollob := apollo.New(&cc).
		AddInputAddress(changeAddr).
		AddLoadedUTxOs(loadedUtxos...)

	if b.ttl != nil {
		apollob = apollob.SetTtl(int64(*b.ttl))
	}

	for _, o := range b.outputs {
		addr, err := serAddress.DecodeAddress(o.ResolvedAddress(b.changeAddress))
		if err != nil {
			return nil, fmt.Errorf("error decoding output address: %w", err)
		}
		lovelace := 0
		if o.Amount != nil {
			lovelace = int(o.Amount.Int64())
		}
		units, err := toApolloUnits(o)
		if err != nil {
			return nil, err
		}
		apollob = apollob.PayToAddress(addr, lovelace, units...)
	}

	tx, err := apollob.
		DisableExecutionUnitsEstimation().
		CompleteExact(int(b.fee.Int64()))
	if err != nil {
		return nil, fmt.Errorf("error completing transaction: %w", err)
	}

	body, err := tx.GetTx().Bytes()
	if err != nil {
		return nil, fmt.Errorf("error serializing transaction: %w", err)
	}

	if len(b.certs) == 0 && len(b.withdrawals) == 0 {
		return body, nil
	}
	return patchCertsAndWithdrawals(body, b.certs, b.stakeCred, b.withdrawals)
}

// toApolloUnits converts an output's native-asset bundle into Apollo's own
// unit representation for PayToAddress/PayToContract.
func toApolloUnits(o coinselect.Output) ([]apollo.Unit, error) {
	if len(o.Assets) == 0 {
		return nil, nil
	}
	units := make([]apollo.Unit, 0, len(o.Assets))
	for _, a := range o.Assets {
		policyHex, nameHex, err := asset.ParseUnit(asset.Unit(a.Unit))
		if err != nil {
			return nil, err
		}
		qty := int64(0)
		if a.Quantity != nil {
			qty = a.Quantity.Int64()
		}
		units = append(units, apollo.NewUnit(policyHex, nameHex, int(qty)))
	}
	return units, nil
}
