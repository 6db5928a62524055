package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana/shortvec"
)

// Marshal encodes the transaction in the legacy wire format.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#anatomy-of-a-transaction
func (t Transaction) Marshal() []byte {
	var b bytes.Buffer

	_, _ = shortvec.EncodeLen(&b, len(t.Signatures))
	for _, s := range t.Signatures {
		b.Write(s[:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	n, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	t.Signatures = make([]Signature, n)
	for i := range t.Signatures {
		if _, err := io.ReadFull(r, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
	}

	rest, _ := io.ReadAll(r)
	return t.Message.Unmarshal(rest)
}

func (m Message) Marshal() []byte {
	var b bytes.Buffer

	b.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	_, _ = shortvec.EncodeLen(&b, len(m.Accounts))
	for _, key := range m.Accounts {
		b.Write(key)
	}
	b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(&b, len(m.Instructions))
	for _, ixn := range m.Instructions {
		b.WriteByte(ixn.ProgramIndex)
		writeCompactBytes(&b, ixn.Accounts)
		writeCompactBytes(&b, ixn.Data)
	}

	return b.Bytes()
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	r := bytes.NewReader(b)

	var header [3]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return errors.Wrap(err, "failed to read header")
	}
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	n, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}
	m.Accounts = make([]ed25519.PublicKey, n)
	for i := range m.Accounts {
		m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		if _, err := io.ReadFull(r, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
	}

	if _, err := io.ReadFull(r, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent blockhash")
	}

	if n, err = shortvec.DecodeLen(r); err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	m.Instructions = make([]CompiledInstruction, n)
	for i := range m.Instructions {
		ixn, err := readCompiledInstruction(r, len(m.Accounts))
		if err != nil {
			return errors.Wrapf(err, "invalid instruction %d", i)
		}
		m.Instructions[i] = ixn
	}

	return nil
}

func readCompiledInstruction(r *bytes.Reader, numAccounts int) (ixn CompiledInstruction, err error) {
	if ixn.ProgramIndex, err = r.ReadByte(); err != nil {
		return ixn, errors.Wrap(err, "failed to read program index")
	}
	if int(ixn.ProgramIndex) >= numAccounts {
		return ixn, errors.Errorf("program index out of range: %d", ixn.ProgramIndex)
	}

	if ixn.Accounts, err = readCompactBytes(r); err != nil {
		return ixn, errors.Wrap(err, "failed to read account indexes")
	}
	for _, index := range ixn.Accounts {
		if int(index) >= numAccounts {
			return ixn, errors.Errorf("account index out of range: %d", index)
		}
	}

	if ixn.Data, err = readCompactBytes(r); err != nil {
		return ixn, errors.Wrap(err, "failed to read data")
	}
	return ixn, nil
}

func writeCompactBytes(b *bytes.Buffer, data []byte) {
	_, _ = shortvec.EncodeLen(b, len(data))
	b.Write(data)
}

func readCompactBytes(r *bytes.Reader) ([]byte, error) {
	n, err := shortvec.DecodeLen(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
