package rpc

import (
	"encoding/hex"
	"fmt"

	"github.com/hashforge/kaspay/internal/payout"
	"github.com/hashforge/kaspay/internal/tx"
)

// getServerInfo

type getServerInfoResponse struct {
	ServerVersion   string `json:"serverVersion"`
	NetworkID       string `json:"networkId"`
	IsUtxoIndexed   bool   `json:"isUtxoIndexed"`
	IsSynced        bool   `json:"isSynced"`
	VirtualDAAScore uint64 `json:"virtualDaaScore"`
}

// getUtxosByAddresses

type utxosByAddressesRequest struct {
	Addresses []string `json:"addresses"`
}

type utxosByAddressesResponse struct {
	Entries []utxoEntryPair `json:"entries"`
}

type utxoEntryPair struct {
	Address   string       `json:"address"`
	Outpoint  rpcOutpoint  `json:"outpoint"`
	UTXOEntry rpcUTXOEntry `json:"utxoEntry"`
}

type rpcOutpoint struct {
	TransactionID string `json:"transactionId"`
	Index         uint32 `json:"index"`
}

type rpcUTXOEntry struct {
	Amount          uint64             `json:"amount"`
	ScriptPublicKey rpcScriptPublicKey `json:"scriptPublicKey"`
	BlockDAAScore   uint64             `json:"blockDaaScore"`
	IsCoinbase      bool               `json:"isCoinbase"`
}

type rpcScriptPublicKey struct {
	Version uint16 `json:"version"`
	Script  string `json:"scriptPublicKey"`
}

func (p *utxoEntryPair) toUTXO() (payout.UTXO, error) {
	txID, err := tx.NewTransactionIDFromHex(p.Outpoint.TransactionID)
	if err != nil {
		return payout.UTXO{}, fmt.Errorf("utxo outpoint: %w", err)
	}
	script, err := hex.DecodeString(p.UTXOEntry.ScriptPublicKey.Script)
	if err != nil {
		return payout.UTXO{}, fmt.Errorf("utxo script: %w", err)
	}
	return payout.UTXO{
		Outpoint: tx.Outpoint{TransactionID: txID, Index: p.Outpoint.Index},
		Entry: &tx.UTXOEntry{
			Amount: p.UTXOEntry.Amount,
			ScriptPublicKey: tx.ScriptPublicKey{
				Version: p.UTXOEntry.ScriptPublicKey.Version,
				Script:  script,
			},
			IsCoinbase:    p.UTXOEntry.IsCoinbase,
			BlockDAAScore: p.UTXOEntry.BlockDAAScore,
		},
	}, nil
}

// submitTransaction

type submitTransactionRequest struct {
	Transaction *rpcTransaction `json:"transaction"`
	AllowOrphan bool            `json:"allowOrphan"`
}

type submitTransactionResponse struct {
	TransactionID string `json:"transactionId"`
}

type rpcTransaction struct {
	Version      uint16       `json:"version"`
	Inputs       []*rpcInput  `json:"inputs"`
	Outputs      []*rpcOutput `json:"outputs"`
	LockTime     uint64       `json:"lockTime"`
	SubnetworkID string       `json:"subnetworkId"`
	Gas          uint64       `json:"gas"`
	Payload      string       `json:"payload"`
	Mass         uint64       `json:"mass,omitempty"`
}

type rpcInput struct {
	PreviousOutpoint rpcOutpoint `json:"previousOutpoint"`
	SignatureScript  string      `json:"signatureScript"`
	Sequence         uint64      `json:"sequence"`
	SigOpCount       uint32      `json:"sigOpCount"`
}

type rpcOutput struct {
	Amount          uint64             `json:"amount"`
	ScriptPublicKey rpcScriptPublicKey `json:"scriptPublicKey"`
}

func toRPCTransaction(transaction *tx.Transaction) *rpcTransaction {
	inputs := make([]*rpcInput, len(transaction.Inputs))
	for i, in := range transaction.Inputs {
		inputs[i] = &rpcInput{
			PreviousOutpoint: rpcOutpoint{
				TransactionID: in.PreviousOutpoint.TransactionID.String(),
				Index:         in.PreviousOutpoint.Index,
			},
			SignatureScript: hex.EncodeToString(in.SignatureScript),
			Sequence:        in.Sequence,
			SigOpCount:      in.SigOpCount,
		}
	}
	outputs := make([]*rpcOutput, len(transaction.Outputs))
	for i, out := range transaction.Outputs {
		outputs[i] = &rpcOutput{
			Amount: out.Amount,
			ScriptPublicKey: rpcScriptPublicKey{
				Version: out.ScriptPublicKey.Version,
				Script:  hex.EncodeToString(out.ScriptPublicKey.Script),
			},
		}
	}
	return &rpcTransaction{
		Version:      transaction.Version,
		Inputs:       inputs,
		Outputs:      outputs,
		LockTime:     transaction.LockTime,
		SubnetworkID: hex.EncodeToString(transaction.SubnetworkID[:]),
		Gas:          transaction.Gas,
		Payload:      hex.EncodeToString(transaction.Payload),
		Mass:         transaction.Mass,
	}
}
