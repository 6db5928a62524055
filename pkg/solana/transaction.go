package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a legacy (unversioned) transaction message. Wrapper calls never
// need address lookup tables, so versioned messages are not produced.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a legacy message paid for by
// payer. Accounts referenced by multiple instructions are merged, keeping the
// most permissive signer and writable flags.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			payer:      true,
		},
	}
	for _, ixn := range instructions {
		accounts = append(accounts, AccountMeta{
			PublicKey: ixn.Program,
			program:   true,
		})
		accounts = append(accounts, ixn.Accounts...)
	}

	accounts = filterUnique(accounts)
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].before(accounts[j])
	})

	var m Message
	for _, account := range accounts {
		key := account.PublicKey
		if len(key) == 0 {
			key = make([]byte, ed25519.PublicKeySize)
		}
		m.Accounts = append(m.Accounts, key)

		if account.IsSigner {
			m.Header.NumSignatures++
			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}

	for _, ixn := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, ixn.Program)),
			Data:         ixn.Data,
		}
		for _, account := range ixn.Accounts {
			compiled.Accounts = append(compiled.Accounts, byte(indexOf(m.Accounts, account.PublicKey)))
		}
		m.Instructions = append(m.Instructions, compiled)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the first signature, which identifies the transaction.
func (t *Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each of the provided keys. Every key must
// belong to one of the message's required signers.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, signer := range signers {
		pub := signer.Public().(ed25519.PublicKey)

		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(signer, messageBytes))
	}

	return nil
}

// IsSigned reports whether every required signature slot has been filled.
func (t *Transaction) IsSigned() bool {
	var empty Signature
	for _, sig := range t.Signatures {
		if sig == empty {
			return false
		}
	}
	return len(t.Signatures) > 0
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", i, s.String()))
	}
	sb.WriteString("Message:\n")
	sb.WriteString("  Header:\n")
	sb.WriteString(fmt.Sprintf("    NumSignatures: %d\n", t.Message.Header.NumSignatures))
	sb.WriteString(fmt.Sprintf("    NumReadOnly: %d\n", t.Message.Header.NumReadOnly))
	sb.WriteString(fmt.Sprintf("    NumReadOnlySigned: %d\n", t.Message.Header.NumReadonlySigned))
	sb.WriteString("  Accounts:\n")
	for i, a := range t.Message.Accounts {
		sb.WriteString(fmt.Sprintf("    %d: %s\n", i, base58.Encode(a)))
	}
	sb.WriteString("  Instructions:\n")
	for i, ixn := range t.Message.Instructions {
		sb.WriteString(fmt.Sprintf("    %d:\n", i))
		sb.WriteString(fmt.Sprintf("      ProgramIndex: %d\n", ixn.ProgramIndex))
		sb.WriteString(fmt.Sprintf("      Accounts: %v\n", ixn.Accounts))
		sb.WriteString(fmt.Sprintf("      Data: %v\n", ixn.Data))
	}
	return sb.String()
}

// IsWritable reports whether the account at the given message index is
// writable according to the header.
func (m Message) IsWritable(index int) bool {
	numSigned := int(m.Header.NumSignatures)
	if index < numSigned {
		return index < numSigned-int(m.Header.NumReadonlySigned)
	}
	return index < len(m.Accounts)-int(m.Header.NumReadOnly)
}

// IsSigner reports whether the account at the given message index must sign.
func (m Message) IsSigner(index int) bool {
	return index < int(m.Header.NumSignatures)
}

func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))

	for _, account := range accounts {
		seen := false
		for j := range filtered {
			if !bytes.Equal(account.PublicKey, filtered[j].PublicKey) {
				continue
			}

			filtered[j].IsSigner = filtered[j].IsSigner || account.IsSigner
			filtered[j].IsWritable = filtered[j].IsWritable || account.IsWritable
			filtered[j].payer = filtered[j].payer || account.payer
			filtered[j].program = filtered[j].program || account.program
			seen = true
			break
		}

		if !seen {
			filtered = append(filtered, account)
		}
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}
	return -1
}
