package model

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/utxo-compressor/errors"
)

// Opcode is one decoded instruction of a script. Data is set for push instructions only.
type Opcode struct {
	Value byte
	Data  []byte
}

// IsPush reports whether the opcode pushes data onto the stack.
func (o Opcode) IsPush() bool {
	return o.Value <= bscript.OpPUSHDATA4
}

// Script is a locking script held both as raw bytes and as a decoded instruction sequence.
// Scripts are immutable once built; the raw slice must not be modified by callers.
type Script struct {
	raw  bscript.Script
	code []Opcode
}

// NewScriptFromRaw wraps raw without copying it.
func NewScriptFromRaw(raw []byte) *Script {
	if raw == nil {
		raw = []byte{}
	}

	return &Script{
		raw:  raw,
		code: decodeCode(raw),
	}
}

// NewScriptFromBt wraps a go-bt script.
func NewScriptFromBt(s *bscript.Script) *Script {
	if s == nil {
		return NewScriptFromRaw(nil)
	}

	return NewScriptFromRaw(*s)
}

// NewScriptFromPubkeyhash builds OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG.
func NewScriptFromPubkeyhash(hash []byte) (*Script, error) {
	if len(hash) != 20 {
		return nil, errors.NewInvalidArgumentError("public key hash must be 20 bytes, got %d", len(hash))
	}

	s, err := bscript.NewP2PKHFromPubKeyHash(hash)
	if err != nil {
		return nil, errors.NewProcessingError("failed to build p2pkh script", err)
	}

	return NewScriptFromRaw(*s), nil
}

// NewScriptFromScripthash builds OP_HASH160 <hash> OP_EQUAL.
func NewScriptFromScripthash(hash []byte) (*Script, error) {
	if len(hash) != 20 {
		return nil, errors.NewInvalidArgumentError("script hash must be 20 bytes, got %d", len(hash))
	}

	s := &bscript.Script{}

	if err := s.AppendOpcodes(bscript.OpHASH160); err != nil {
		return nil, errors.NewProcessingError("failed to build p2sh script", err)
	}

	if err := s.AppendPushData(hash); err != nil {
		return nil, errors.NewProcessingError("failed to build p2sh script", err)
	}

	if err := s.AppendOpcodes(bscript.OpEQUAL); err != nil {
		return nil, errors.NewProcessingError("failed to build p2sh script", err)
	}

	return NewScriptFromRaw(*s), nil
}

// NewScriptFromPubkey builds <key> OP_CHECKSIG. The key is not validated beyond its length.
func NewScriptFromPubkey(key []byte) (*Script, error) {
	if len(key) != 33 && len(key) != 65 {
		return nil, errors.NewInvalidArgumentError("public key must be 33 or 65 bytes, got %d", len(key))
	}

	s := &bscript.Script{}

	if err := s.AppendPushData(key); err != nil {
		return nil, errors.NewProcessingError("failed to build p2pk script", err)
	}

	if err := s.AppendOpcodes(bscript.OpCHECKSIG); err != nil {
		return nil, errors.NewProcessingError("failed to build p2pk script", err)
	}

	return NewScriptFromRaw(*s), nil
}

// NewScriptFromNulldata builds OP_RETURN <data>. Empty data is pushed as OP_0.
func NewScriptFromNulldata(data []byte) (*Script, error) {
	s := &bscript.Script{}

	if err := s.AppendOpcodes(bscript.OpRETURN); err != nil {
		return nil, errors.NewProcessingError("failed to build nulldata script", err)
	}

	var err error
	if len(data) == 0 {
		err = s.AppendOpcodes(bscript.OpFALSE)
	} else {
		err = s.AppendPushData(data)
	}

	if err != nil {
		return nil, errors.NewProcessingError("failed to build nulldata script", err)
	}

	return NewScriptFromRaw(*s), nil
}

func (s *Script) Raw() []byte {
	return s.raw
}

func (s *Script) Code() []Opcode {
	return s.code
}

func (s *Script) Len() int {
	return len(s.raw)
}

// Bt returns the script as a go-bt script sharing the same bytes.
func (s *Script) Bt() *bscript.Script {
	return &s.raw
}

func (s *Script) Equals(other *Script) bool {
	if other == nil {
		return false
	}

	return bytes.Equal(s.raw, other.raw)
}

func (s *Script) String() string {
	return hex.EncodeToString(s.raw)
}

// IsPubkeyhash tests for OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG.
// With minimal set, only the canonical 25 byte encoding matches.
func (s *Script) IsPubkeyhash(minimal bool) bool {
	if minimal || len(s.raw) == 25 {
		return len(s.raw) == 25 &&
			s.raw[0] == bscript.OpDUP &&
			s.raw[1] == bscript.OpHASH160 &&
			s.raw[2] == bscript.OpDATA20 &&
			s.raw[23] == bscript.OpEQUALVERIFY &&
			s.raw[24] == bscript.OpCHECKSIG
	}

	return len(s.code) == 5 &&
		s.op(0) == bscript.OpDUP &&
		s.op(1) == bscript.OpHASH160 &&
		s.pushLen(2) == 20 &&
		s.op(3) == bscript.OpEQUALVERIFY &&
		s.op(4) == bscript.OpCHECKSIG
}

// IsScripthash tests for OP_HASH160 <20 bytes> OP_EQUAL. Only the canonical encoding
// matches, since that is the only form the protocol treats as pay-to-script-hash.
func (s *Script) IsScripthash() bool {
	return s.raw.IsP2SH()
}

// IsPubkey tests for <33 or 65 bytes> OP_CHECKSIG. The key itself is not validated.
func (s *Script) IsPubkey(minimal bool) bool {
	if minimal {
		size := len(s.raw)

		return (size == 35 || size == 67) &&
			int(s.raw[0])+2 == size &&
			s.raw[size-1] == bscript.OpCHECKSIG
	}

	if len(s.code) != 2 {
		return false
	}

	l := s.pushLen(0)

	return (l == 33 || l == 65) && s.op(1) == bscript.OpCHECKSIG
}

// IsNulldata tests for an OP_RETURN output.
func (s *Script) IsNulldata() bool {
	return s.raw.IsData()
}

// GetPubkeyhash returns the 20 byte hash of a pay-to-pubkey-hash script, or nil.
func (s *Script) GetPubkeyhash(minimal bool) []byte {
	if !s.IsPubkeyhash(minimal) {
		return nil
	}

	if len(s.raw) == 25 {
		return s.raw[3:23]
	}

	return s.code[2].Data
}

// GetScripthash returns the 20 byte hash of a pay-to-script-hash script, or nil.
func (s *Script) GetScripthash() []byte {
	if !s.IsScripthash() {
		return nil
	}

	return s.raw[2:22]
}

// GetPubkey returns the public key of a pay-to-pubkey script, or nil.
func (s *Script) GetPubkey(minimal bool) []byte {
	if !s.IsPubkey(minimal) {
		return nil
	}

	if minimal {
		return s.raw[1 : len(s.raw)-1]
	}

	return s.code[0].Data
}

func (s *Script) op(i int) byte {
	if i >= len(s.code) {
		return bscript.OpINVALIDOPCODE
	}

	return s.code[i].Value
}

func (s *Script) pushLen(i int) int {
	if i >= len(s.code) || !s.code[i].IsPush() {
		return -1
	}

	return len(s.code[i].Data)
}

// decodeCode splits raw into instructions. A push that runs past the end of the script
// ends decoding with an OpINVALIDOPCODE marker so that no shape predicate can match.
func decodeCode(raw []byte) []Opcode {
	code := make([]Opcode, 0, 8)

	for i := 0; i < len(raw); {
		op := raw[i]
		i++

		var n int

		switch {
		case op == bscript.OpFALSE:
			code = append(code, Opcode{Value: op, Data: []byte{}})
			continue
		case op < bscript.OpPUSHDATA1:
			n = int(op)
		case op == bscript.OpPUSHDATA1:
			if i+1 > len(raw) {
				return append(code, Opcode{Value: bscript.OpINVALIDOPCODE})
			}

			n = int(raw[i])
			i++
		case op == bscript.OpPUSHDATA2:
			if i+2 > len(raw) {
				return append(code, Opcode{Value: bscript.OpINVALIDOPCODE})
			}

			n = int(binary.LittleEndian.Uint16(raw[i:]))
			i += 2
		case op == bscript.OpPUSHDATA4:
			if i+4 > len(raw) {
				return append(code, Opcode{Value: bscript.OpINVALIDOPCODE})
			}

			n = int(binary.LittleEndian.Uint32(raw[i:]))
			i += 4
		default:
			code = append(code, Opcode{Value: op})
			continue
		}

		if n > len(raw)-i {
			return append(code, Opcode{Value: bscript.OpINVALIDOPCODE})
		}

		code = append(code, Opcode{Value: op, Data: raw[i : i+n]})
		i += n
	}

	return code
}
