package ledger

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// ValType discriminates the wire encoding of a contract-call value.
type ValType uint8

const (
	TypeBool ValType = iota + 1
	TypeU32
	TypeU64
	TypeI128
	TypeString
	TypeSymbol
	TypeBytes
	TypeAddress
	TypeVec
)

func (t ValType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeU32:
		return "u32"
	case TypeU64:
		return "u64"
	case TypeI128:
		return "i128"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeBytes:
		return "bytes"
	case TypeAddress:
		return "address"
	case TypeVec:
		return "vec"
	default:
		return fmt.Sprintf("valtype(%d)", uint8(t))
	}
}

// Val is one typed contract-call value. Exactly one payload field is
// meaningful, selected by Type. Addresses must be built as TypeAddress
// values, never passed as bare strings; mixing the two representations is a
// known source of contract-call failures.
type Val struct {
	Type  ValType
	B     bool
	U32   uint32
	U64   uint64
	I128  *uint256.Int
	Str   string // TypeString, TypeSymbol, and TypeAddress
	Bytes []byte
	Vec   []Val
}

func BoolVal(b bool) Val         { return Val{Type: TypeBool, B: b} }
func U32Val(v uint32) Val        { return Val{Type: TypeU32, U32: v} }
func U64Val(v uint64) Val        { return Val{Type: TypeU64, U64: v} }
func StringVal(s string) Val     { return Val{Type: TypeString, Str: s} }
func SymbolVal(s string) Val     { return Val{Type: TypeSymbol, Str: s} }
func BytesVal(b []byte) Val      { return Val{Type: TypeBytes, Bytes: b} }
func AddressVal(addr string) Val { return Val{Type: TypeAddress, Str: addr} }
func VecVal(elems ...Val) Val    { return Val{Type: TypeVec, Vec: elems} }
func I128Val(v *uint256.Int) Val { return Val{Type: TypeI128, I128: v} }

// U64VecVal builds a vector of u64 values, the contract's outcome-id list
// representation.
func U64VecVal(ids []uint64) Val {
	elems := make([]Val, len(ids))
	for i, id := range ids {
		elems[i] = U64Val(id)
	}
	return VecVal(elems...)
}

// StringVecVal builds a vector of string values.
func StringVecVal(ss []string) Val {
	elems := make([]Val, len(ss))
	for i, s := range ss {
		elems[i] = StringVal(s)
	}
	return VecVal(elems...)
}

// encode writes the value's canonical form: a type byte followed by a
// type-specific payload. Variable-length payloads are length-prefixed with a
// little-endian uint32.
func (v Val) encode(buf *bytes.Buffer) error {
	buf.WriteByte(byte(v.Type))

	switch v.Type {
	case TypeBool:
		if v.B {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case TypeU32:
		if err := binary.Write(buf, binary.LittleEndian, v.U32); err != nil {
			return err
		}
	case TypeU64:
		if err := binary.Write(buf, binary.LittleEndian, v.U64); err != nil {
			return err
		}
	case TypeI128:
		amount := v.I128
		if amount == nil {
			amount = uint256.NewInt(0)
		}
		if amount.BitLen() > 128 {
			return fmt.Errorf("i128 value %s exceeds 128 bits", amount)
		}
		b32 := amount.Bytes32()
		// low 16 bytes, least significant first
		for i := 31; i >= 16; i-- {
			buf.WriteByte(b32[i])
		}
	case TypeString, TypeSymbol, TypeAddress:
		if err := writeLengthPrefixed(buf, []byte(v.Str)); err != nil {
			return err
		}
	case TypeBytes:
		if err := writeLengthPrefixed(buf, v.Bytes); err != nil {
			return err
		}
	case TypeVec:
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(v.Vec))); err != nil {
			return err
		}
		for _, elem := range v.Vec {
			if err := elem.encode(buf); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("cannot encode unknown value type %d", v.Type)
	}
	return nil
}

func decodeVal(r *bytes.Reader) (Val, error) {
	tb, err := r.ReadByte()
	if err != nil {
		return Val{}, fmt.Errorf("reading value type: %w", err)
	}

	v := Val{Type: ValType(tb)}
	switch v.Type {
	case TypeBool:
		b, err := r.ReadByte()
		if err != nil {
			return Val{}, fmt.Errorf("reading bool: %w", err)
		}
		v.B = b != 0
	case TypeU32:
		if err := binary.Read(r, binary.LittleEndian, &v.U32); err != nil {
			return Val{}, fmt.Errorf("reading u32: %w", err)
		}
	case TypeU64:
		if err := binary.Read(r, binary.LittleEndian, &v.U64); err != nil {
			return Val{}, fmt.Errorf("reading u64: %w", err)
		}
	case TypeI128:
		raw := make([]byte, 16)
		if _, err := io.ReadFull(r, raw); err != nil {
			return Val{}, fmt.Errorf("reading i128: %w", err)
		}
		var be [32]byte
		for i := 0; i < 16; i++ {
			be[31-i] = raw[i]
		}
		v.I128 = new(uint256.Int).SetBytes(be[:])
	case TypeString, TypeSymbol, TypeAddress:
		b, err := readLengthPrefixed(r)
		if err != nil {
			return Val{}, fmt.Errorf("reading %s: %w", v.Type, err)
		}
		v.Str = string(b)
	case TypeBytes:
		b, err := readLengthPrefixed(r)
		if err != nil {
			return Val{}, fmt.Errorf("reading bytes: %w", err)
		}
		v.Bytes = b
	case TypeVec:
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return Val{}, fmt.Errorf("reading vec length: %w", err)
		}
		if int(count) > r.Len() {
			return Val{}, fmt.Errorf("vec length %d exceeds remaining input", count)
		}
		v.Vec = make([]Val, 0, count)
		for i := uint32(0); i < count; i++ {
			elem, err := decodeVal(r)
			if err != nil {
				return Val{}, fmt.Errorf("vec element %d: %w", i, err)
			}
			v.Vec = append(v.Vec, elem)
		}
	default:
		return Val{}, fmt.Errorf("cannot decode unknown value type %d", tb)
	}
	return v, nil
}

// EncodeVals encodes a positional argument list: a little-endian uint32
// count followed by the values' canonical forms.
func EncodeVals(vals []Val) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(vals))); err != nil {
		return nil, err
	}
	for i, v := range vals {
		if err := v.encode(buf); err != nil {
			return nil, fmt.Errorf("encoding value %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeVals is the inverse of EncodeVals.
func DecodeVals(data []byte) ([]Val, error) {
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading value count: %w", err)
	}
	if int(count) > r.Len() {
		return nil, fmt.Errorf("value count %d exceeds remaining input", count)
	}
	vals := make([]Val, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := decodeVal(r)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		vals = append(vals, v)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %d values", r.Len(), count)
	}
	return vals, nil
}

// EncodeValBase64 encodes one value for RPC transport.
func EncodeValBase64(v Val) (string, error) {
	buf := new(bytes.Buffer)
	if err := v.encode(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeValBase64 decodes one base64-encoded value, typically a simulated
// call's return value.
func DecodeValBase64(s string) (Val, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Val{}, fmt.Errorf("base64 value: %w", err)
	}
	r := bytes.NewReader(raw)
	v, err := decodeVal(r)
	if err != nil {
		return Val{}, err
	}
	if r.Len() != 0 {
		return Val{}, fmt.Errorf("%d trailing bytes after value", r.Len())
	}
	return v, nil
}

func writeLengthPrefixed(buf *bytes.Buffer, b []byte) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := buf.Write(b)
	return err
}

func readLengthPrefixed(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if int(n) > r.Len() {
		return nil, fmt.Errorf("length prefix %d exceeds remaining input %d", n, r.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
