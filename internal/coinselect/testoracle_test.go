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

// fakeOracle is a deterministic Oracle double used by this package's own
// tests so the fixed-point loop can be exercised without Apollo/CBOR. It
// implements the exact linear-fee polynomial and coins-per-UTXO-byte
// formula from spec §6.2, using made-up but stable per-element byte costs
// in place of real CBOR sizing (mirrors the addFee shape in
// other_examples' tclairet-cardano-go tx.go: set a placeholder fee,
// estimate size, recompute).
type fakeOracle struct {
	feeA             *big.Int
	feeB             *big.Int
	coinsPerUtxoByte *big.Int
}

const (
	fakeBaseTxBytes     = 10
	fakeInputBytes      = 41
	fakeOutputBaseBytes = 27
	fakeAssetBytes      = 12
	fakeCertBytes       = 30
	fakeWithdrawalBytes = 28
)

func newFakeOracle(feeA, feeB, coinsPerUtxoByte int64) *fakeOracle {
	return &fakeOracle{
		feeA:             big.NewInt(feeA),
		feeB:             big.NewInt(feeB),
		coinsPerUtxoByte: big.NewInt(coinsPerUtxoByte),
	}
}

func (o *fakeOracle) outputSize(output Output) int {
	return fakeOutputBaseBytes + len(output.Assets)*fakeAssetBytes
}

func (o *fakeOracle) MinAda(output Output) (*big.Int, error) {
	size := big.NewInt(int64(o.outputSize(output)))
	return new(big.Int).Mul(o.coinsPerUtxoByte, size), nil
}

func (o *fakeOracle) ValueSize(output Output) (int, error) {
	return o.outputSize(output), nil
}

func (o *fakeOracle) FeeForInput(addr string, input UTXO) (*big.Int, error) {
	return new(big.Int).Mul(o.feeA, big.NewInt(fakeInputBytes)), nil
}

func (o *fakeOracle) FeeForOutput(output Output) (*big.Int, error) {
	size := big.NewInt(int64(o.outputSize(output)))
	return new(big.Int).Mul(o.feeA, size), nil
}

func (o *fakeOracle) DeriveStakeCredential(accountPubKey []byte) ([]byte, error) {
	out := make([]byte, 28)
	for i := range out {
		out[i] = 0xAA
		if i < len(accountPubKey) {
			out[i] ^= accountPubKey[i]
		}
	}
	return out, nil
}

func (o *fakeOracle) NewBuilder(changeAddress string) Builder {
	return &fakeBuilder{oracle: o, changeAddress: changeAddress}
}

// fakeBuilder is fakeOracle's companion Builder: it never shares state
// across compositions (spec §5), matching NewBuilder being called once
// per Compose.
type fakeBuilder struct {
	oracle        *fakeOracle
	changeAddress string
	inputs        []UTXO
	outputs       []Output
	certs         []Certificate
	withdrawals   []Withdrawal
	ttl           *uint64
	fee           *big.Int
	stakeCred     []byte
}

func (b *fakeBuilder) AddInput(input UTXO) bool {
	for _, existing := range b.inputs {
		if existing.ID() == input.ID() {
			return false
		}
	}
	b.inputs = append(b.inputs, input)
	return true
}

func (b *fakeBuilder) SetOutputs(outputs []Output) {
	b.outputs = outputs
}

func (b *fakeBuilder) SetCertificates(certs []Certificate) error {
	if err := validateCertificates(certs); err != nil {
		return err
	}
	b.certs = certs
	return nil
}

func (b *fakeBuilder) SetWithdrawals(withdrawals []Withdrawal) {
	b.withdrawals = withdrawals
}

func (b *fakeBuilder) SetTTL(ttl *uint64) {
	b.ttl = ttl
}

func (b *fakeBuilder) SetFee(fee *big.Int) {
	b.fee = fee
}

func (b *fakeBuilder) SetStakeCredential(credential []byte) {
	b.stakeCred = credential
}

func (b *fakeBuilder) Inputs() []UTXO {
	out := make([]UTXO, len(b.inputs))
	copy(out, b.inputs)
	return out
}

func (b *fakeBuilder) size() int {
	size := fakeBaseTxBytes
	size += len(b.inputs) * fakeInputBytes
	for _, o := range b.outputs {
		size += b.oracle.outputSize(o)
	}
	size += len(b.certs) * fakeCertBytes
	size += len(b.withdrawals) * fakeWithdrawalBytes
	if b.ttl != nil {
		size += 8
	}
	return size
}

func (b *fakeBuilder) MinFee() (*big.Int, error) {
	size := big.NewInt(int64(b.size()))
	fee := new(big.Int).Mul(b.oracle.feeA, size)
	fee.Add(fee, b.oracle.feeB)
	return fee, nil
}

func (b *fakeBuilder) Serialize() ([]byte, error) {
	return make([]byte, b.size()), nil
}
