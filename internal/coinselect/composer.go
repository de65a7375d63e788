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
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// CompositionRequest is the Composer's input (spec §4, §4.7). KeyDeposit,
// PoolDeposit, DustFloor, MaxTxSize and MaxValueSize come from protocol
// config; MaxTokensPerOutput falls back to the protocol default when zero.
type CompositionRequest struct {
	UTXOs         []UTXO
	Outputs       []Output
	ChangeAddress string
	Certificates  []Certificate
	Withdrawals   []Withdrawal
	AccountPubKey []byte
	TTL           *uint64
	Options       Options

	KeyDeposit                *big.Int
	PoolDeposit               *big.Int
	DustFloor                 *big.Int
	MaxTxSize                 uint64
	MaxValueSize              uint64
	DefaultMaxTokensPerOutput uint32

	Mode Mode
}

// Compose runs Normalize -> Selection Loop -> Max-Output Finalizer ->
// serialize/hash (spec §4, entry point G). In ModePrecompose it returns
// only totalSpent/fee without ever calling the oracle's Serialize.
func Compose(oracle Oracle, req CompositionRequest) (*TxSummary, error) {
	if err := validateCertificates(req.Certificates); err != nil {
		return nil, err
	}

	prepared, err := normalize(req.Outputs, oracle)
	if err != nil {
		return nil, err
	}

	maxIdx := -1
	for i, o := range prepared {
		if o.SetMax {
			maxIdx = i
			break
		}
	}

	maxTokensPerOutput := req.Options.MaxTokensPerOutput
	if maxTokensPerOutput == 0 {
		maxTokensPerOutput = req.DefaultMaxTokensPerOutput
	}

	builder := oracle.NewBuilder(req.ChangeAddress)
	if len(req.Certificates) > 0 {
		credential, err := oracle.DeriveStakeCredential(req.AccountPubKey)
		if err != nil {
			return nil, err
		}
		builder.SetStakeCredential(credential)
	}

	loopRes, err := runSelectionLoop(selectionParams{
		Oracle:             oracle,
		Builder:            builder,
		UTXOs:              req.UTXOs,
		PreparedOutputs:    prepared,
		Certificates:       req.Certificates,
		Withdrawals:        req.Withdrawals,
		ChangeAddress:      req.ChangeAddress,
		MaxTokensPerOutput: maxTokensPerOutput,
		DustFloor:          req.DustFloor,
		KeyDeposit:         req.KeyDeposit,
		PoolDeposit:        req.PoolDeposit,
		TTL:                req.TTL,
		MaxOutputIndex:     maxIdx,
		PickExtraUTXO:      req.Options.ChangeBuilder.PickExtraUTXO,
	})
	if err != nil {
		return nil, err
	}

	loopRes, err = finalizeMaxOutput(loopRes, maxIdx, oracle, builder)
	if err != nil {
		return nil, err
	}

	for _, o := range loopRes.AllOutputs {
		size, err := oracle.ValueSize(o)
		if err != nil {
			return nil, err
		}
		if req.MaxValueSize > 0 && uint64(size) > req.MaxValueSize {
			return nil, ErrMaxValueSizeReached
		}
	}

	userOutputsLovelace := sumOutputs(loopRes.AllOutputs[:len(prepared)], "lovelace")
	totalSpent := new(big.Int).Add(userOutputsLovelace, loopRes.Fee)
	totalSpent.Add(totalSpent, loopRes.DepositNet)
	totalSpent.Sub(totalSpent, sumWithdrawals(req.Withdrawals))

	var maxOutPtr *Output
	if maxIdx >= 0 {
		maxOutPtr = &loopRes.AllOutputs[maxIdx]
	}

	if req.Mode == ModePrecompose {
		return &TxSummary{
			Fee:        loopRes.Fee,
			TotalSpent: totalSpent,
		}, nil
	}

	builder.SetOutputs(loopRes.AllOutputs)
	builder.SetFee(loopRes.Fee)
	body, err := builder.Serialize()
	if err != nil {
		return nil, err
	}
	if req.MaxTxSize > 0 && uint64(len(body)) > req.MaxTxSize {
		return nil, ErrMaxTxSizeReached
	}
	hash := blake2b.Sum256(body)

	return &TxSummary{
		Inputs:     loopRes.Used,
		Outputs:    loopRes.AllOutputs,
		Fee:        loopRes.Fee,
		TotalSpent: totalSpent,
		TTL:        req.TTL,
		Tx: &SerializedTx{
			BodyHex: hex.EncodeToString(body),
			HashHex: hex.EncodeToString(hash[:]),
			Size:    len(body),
		},
		Max: maxOutPtr,
	}, nil
}
