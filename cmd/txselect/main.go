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

package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/blinklabs-io/txselect/internal/coinselect"
	"github.com/blinklabs-io/txselect/internal/config"
	"github.com/blinklabs-io/txselect/internal/indexer"
	"github.com/blinklabs-io/txselect/internal/ledgeroracle"
	"github.com/blinklabs-io/txselect/internal/logging"
	"github.com/blinklabs-io/txselect/internal/storage"
	"github.com/blinklabs-io/txselect/internal/wallet"
)

const (
	programName   = "txselect"
	versionString = "0.1.0"
)

var cmdlineFlags struct {
	configFile string
	version    bool
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.BoolVar(&cmdlineFlags.version, "version", false, "show version")
	flag.Parse()

	if cmdlineFlags.version {
		fmt.Printf("%s %s\n", programName, versionString)
		os.Exit(0)
	}

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	logging.Configure()
	logger := logging.GetLogger()

	undoMaxProcs, err := maxprocs.Set(maxprocs.Logger(func(msg string, args ...any) {
		logger.Debug(fmt.Sprintf(msg, args...))
	}))
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", "error", err)
	}
	defer undoMaxProcs()

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Info(
			"starting debug listener",
			"address", cfg.Debug.ListenAddress,
			"port", cfg.Debug.ListenPort,
		)
		go func() {
			addr := fmt.Sprintf("%s:%d", cfg.Debug.ListenAddress, cfg.Debug.ListenPort)
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.Error("failed to start debug listener", "error", err)
				os.Exit(1)
			}
		}()
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] <compose|sync> [args]\n", programName)
		os.Exit(1)
	}

	var cmdErr error
	switch args[0] {
	case "compose":
		cmdErr = runCompose(cfg, args[1:])
	case "sync":
		cmdErr = runSync(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", args[0])
		os.Exit(1)
	}
	if cmdErr != nil {
		logger.Error("command failed", "command", args[0], "error", cmdErr)
		os.Exit(1)
	}
}

// runSync drives the chain-sync indexer that keeps the wallet's own UTxO
// set in internal/storage up to date, until interrupted.
func runSync(cfg *config.Config) error {
	logger := logging.GetLogger()

	if _, err := wallet.Load(); err != nil {
		return fmt.Errorf("error loading wallet: %w", err)
	}
	if err := storage.GetStorage().Load(); err != nil {
		return fmt.Errorf("error loading storage: %w", err)
	}

	idx := indexer.New()
	if err := idx.Start(); err != nil {
		return fmt.Errorf("error starting indexer: %w", err)
	}
	logger.Info("indexer started", "network", cfg.Network)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down")
	return nil
}

// runCompose reads a composeRequest as JSON from stdin (or -in), runs the
// fixed-point selection/fee/change loop via ledgeroracle, and writes the
// resulting TxSummary as JSON to stdout (or -out).
func runCompose(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	inPath := fs.String("in", "", "path to JSON composition request (default: stdin)")
	outPath := fs.String("out", "", "path to write JSON result (default: stdout)")
	precompose := fs.Bool("precompose", false, "run in precompose mode (size/fee only, no serialization)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			return fmt.Errorf("error opening input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var wireReq composeRequest
	if err := json.NewDecoder(in).Decode(&wireReq); err != nil {
		return fmt.Errorf("error decoding composition request: %w", err)
	}

	req, err := wireReq.toRequest(cfg, *precompose)
	if err != nil {
		return fmt.Errorf("error parsing composition request: %w", err)
	}

	feeA := cfg.Protocol.FeeA
	if fa := req.Options.FeeParamA; fa != nil {
		if fa.Sign() > 0 && fa.IsUint64() {
			feeA = fa.Uint64()
		} else {
			logging.GetLogger().Warn("ignoring invalid feeParamA override", "feeParamA", fa.String())
		}
	}
	oracle := ledgeroracle.New(
		feeA,
		cfg.Protocol.FeeB,
		cfg.Protocol.CoinsPerUtxoByte,
	)

	summary, err := coinselect.Compose(oracle, req)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(fromSummary(summary))
}

// composeRequest is the JSON wire shape for a composition request (spec
// §3/§6.3). Quantities are decimal strings to preserve arbitrary precision
// across the JSON boundary.
type composeRequest struct {
	UTXOs            []wireUTXO        `json:"utxos"`
	Outputs          []wireOutput      `json:"outputs"`
	ChangeAddress    string            `json:"changeAddress"`
	Certificates     []wireCertificate `json:"certificates,omitempty"`
	Withdrawals      []wireWithdrawal  `json:"withdrawals,omitempty"`
	AccountPubKeyHex string            `json:"accountPubKey,omitempty"`
	TTL              *uint64           `json:"ttl,omitempty"`
	Options          wireOptions       `json:"options,omitempty"`
}

type wireAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type wireUTXO struct {
	TxHash      string       `json:"txHash"`
	OutputIndex uint32       `json:"outputIndex"`
	Address     string       `json:"address"`
	Amount      []wireAmount `json:"amount"`
}

type wireOutput struct {
	Address *string      `json:"address,omitempty"`
	Amount  *string      `json:"amount,omitempty"`
	Assets  []wireAmount `json:"assets,omitempty"`
	SetMax  bool         `json:"setMax,omitempty"`
}

type wireCertificate struct {
	Type     string `json:"type"`
	PoolHash string `json:"poolHash,omitempty"`
}

type wireWithdrawal struct {
	StakeAddress string `json:"stakeAddress"`
	Amount       string `json:"amount"`
}

type wireOptions struct {
	MaxTokensPerOutput uint32  `json:"maxTokensPerOutput,omitempty"`
	FeeParamA          *string `json:"feeParamA,omitempty"`
}

func parseBigInt(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer quantity: %q", s)
	}
	return n, nil
}

func (w wireAmount) toAmount() (coinselect.Amount, error) {
	qty, err := parseBigInt(w.Quantity)
	if err != nil {
		return coinselect.Amount{}, err
	}
	return coinselect.Amount{Unit: w.Unit, Quantity: qty}, nil
}

func (w wireUTXO) toUTXO() (coinselect.UTXO, error) {
	amounts := make([]coinselect.Amount, len(w.Amount))
	for i, a := range w.Amount {
		amt, err := a.toAmount()
		if err != nil {
			return coinselect.UTXO{}, err
		}
		amounts[i] = amt
	}
	return coinselect.UTXO{
		TxHash:      w.TxHash,
		OutputIndex: w.OutputIndex,
		Address:     w.Address,
		Amount:      amounts,
	}, nil
}

func (w wireOutput) toOutput() (coinselect.Output, error) {
	out := coinselect.Output{Address: w.Address, SetMax: w.SetMax}
	if w.Amount != nil {
		amt, err := parseBigInt(*w.Amount)
		if err != nil {
			return coinselect.Output{}, err
		}
		out.Amount = amt
	}
	assets := make([]coinselect.Amount, len(w.Assets))
	for i, a := range w.Assets {
		amt, err := a.toAmount()
		if err != nil {
			return coinselect.Output{}, err
		}
		assets[i] = amt
	}
	out.Assets = assets
	return out, nil
}

func (w wireCertificate) toCertificate() (coinselect.Certificate, error) {
	switch w.Type {
	case "StakeRegistration":
		return coinselect.Certificate{Type: coinselect.CertStakeRegistration}, nil
	case "StakeDeregistration":
		return coinselect.Certificate{Type: coinselect.CertStakeDeregistration}, nil
	case "StakeDelegation":
		return coinselect.Certificate{Type: coinselect.CertStakeDelegation, PoolHash: w.PoolHash}, nil
	case "StakePoolRegistration":
		return coinselect.Certificate{Type: coinselect.CertStakePoolRegistration}, nil
	default:
		return coinselect.Certificate{}, fmt.Errorf("unknown certificate type: %q", w.Type)
	}
}

func (w wireWithdrawal) toWithdrawal() (coinselect.Withdrawal, error) {
	amt, err := parseBigInt(w.Amount)
	if err != nil {
		return coinselect.Withdrawal{}, err
	}
	return coinselect.Withdrawal{StakeAddress: w.StakeAddress, Amount: amt}, nil
}

// toRequest converts the wire request into a coinselect.CompositionRequest,
// filling protocol/coin-selection tunables from config (spec §6.2/§6.3).
func (w composeRequest) toRequest(cfg *config.Config, precompose bool) (coinselect.CompositionRequest, error) {
	utxos := make([]coinselect.UTXO, len(w.UTXOs))
	for i, u := range w.UTXOs {
		v, err := u.toUTXO()
		if err != nil {
			return coinselect.CompositionRequest{}, err
		}
		utxos[i] = v
	}

	outputs := make([]coinselect.Output, len(w.Outputs))
	for i, o := range w.Outputs {
		v, err := o.toOutput()
		if err != nil {
			return coinselect.CompositionRequest{}, err
		}
		outputs[i] = v
	}

	certs := make([]coinselect.Certificate, len(w.Certificates))
	for i, c := range w.Certificates {
		v, err := c.toCertificate()
		if err != nil {
			return coinselect.CompositionRequest{}, err
		}
		certs[i] = v
	}

	withdrawals := make([]coinselect.Withdrawal, len(w.Withdrawals))
	for i, ww := range w.Withdrawals {
		v, err := ww.toWithdrawal()
		if err != nil {
			return coinselect.CompositionRequest{}, err
		}
		withdrawals[i] = v
	}

	var accountPubKey []byte
	if w.AccountPubKeyHex != "" {
		var err error
		accountPubKey, err = hex.DecodeString(w.AccountPubKeyHex)
		if err != nil {
			return coinselect.CompositionRequest{}, fmt.Errorf("error decoding accountPubKey: %w", err)
		}
	}

	opts := coinselect.Options{MaxTokensPerOutput: w.Options.MaxTokensPerOutput}
	if w.Options.FeeParamA != nil {
		feeA, err := parseBigInt(*w.Options.FeeParamA)
		if err != nil {
			return coinselect.CompositionRequest{}, err
		}
		opts.FeeParamA = feeA
	}

	mode := coinselect.ModeFinal
	if precompose {
		mode = coinselect.ModePrecompose
	}

	return coinselect.CompositionRequest{
		UTXOs:                     utxos,
		Outputs:                   outputs,
		ChangeAddress:             w.ChangeAddress,
		Certificates:              certs,
		Withdrawals:               withdrawals,
		AccountPubKey:             accountPubKey,
		TTL:                       w.TTL,
		Options:                   opts,
		KeyDeposit:                new(big.Int).SetUint64(cfg.Protocol.KeyDeposit),
		PoolDeposit:               new(big.Int).SetUint64(cfg.Protocol.PoolDeposit),
		DustFloor:                 new(big.Int).SetUint64(cfg.CoinSelection.DustPullFloor),
		MaxTxSize:                 cfg.Protocol.MaxTxSize,
		MaxValueSize:              cfg.Protocol.MaxValueSize,
		DefaultMaxTokensPerOutput: cfg.CoinSelection.MaxTokensPerOutput,
		Mode:                      mode,
	}, nil
}

// Wire response types, mirroring coinselect.TxSummary with JSON-friendly
// (string) quantities.
type summaryResponse struct {
	Inputs     []wireUTXO   `json:"inputs"`
	Outputs    []wireOutput `json:"outputs"`
	Fee        string       `json:"fee"`
	TotalSpent string       `json:"totalSpent"`
	TTL        *uint64      `json:"ttl,omitempty"`
	Tx         *wireTx      `json:"tx,omitempty"`
	Max        *wireOutput  `json:"max,omitempty"`
}

type wireTx struct {
	Body string `json:"body"`
	Hash string `json:"hash"`
	Size int    `json:"size"`
}

func fromAmount(a coinselect.Amount) wireAmount {
	qty := "0"
	if a.Quantity != nil {
		qty = a.Quantity.String()
	}
	return wireAmount{Unit: a.Unit, Quantity: qty}
}

func fromUTXO(u coinselect.UTXO) wireUTXO {
	amounts := make([]wireAmount, len(u.Amount))
	for i, a := range u.Amount {
		amounts[i] = fromAmount(a)
	}
	return wireUTXO{
		TxHash:      u.TxHash,
		OutputIndex: u.OutputIndex,
		Address:     u.Address,
		Amount:      amounts,
	}
}

func fromOutput(o coinselect.Output) wireOutput {
	out := wireOutput{Address: o.Address, SetMax: o.SetMax}
	if o.Amount != nil {
		s := o.Amount.String()
		out.Amount = &s
	}
	assets := make([]wireAmount, len(o.Assets))
	for i, a := range o.Assets {
		assets[i] = fromAmount(a)
	}
	out.Assets = assets
	return out
}

func fromSummary(s *coinselect.TxSummary) summaryResponse {
	inputs := make([]wireUTXO, len(s.Inputs))
	for i, u := range s.Inputs {
		inputs[i] = fromUTXO(u)
	}
	outputs := make([]wireOutput, len(s.Outputs))
	for i, o := range s.Outputs {
		outputs[i] = fromOutput(o)
	}
	resp := summaryResponse{
		Inputs:     inputs,
		Outputs:    outputs,
		Fee:        s.Fee.String(),
		TotalSpent: s.TotalSpent.String(),
		TTL:        s.TTL,
	}
	if s.Tx != nil {
		resp.Tx = &wireTx{Body: s.Tx.BodyHex, Hash: s.Tx.HashHex, Size: s.Tx.Size}
	}
	if s.Max != nil {
		o := fromOutput(*s.Max)
		resp.Max = &o
	}
	return resp
}
