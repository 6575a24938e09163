package registry

import "encoding/binary"

// Field widths from spec.md §3's EndpointContract layout. The wire image
// is tightly packed with no padding, so it is encoded by hand rather than
// taken from Go's in-memory struct layout (which the compiler is free to
// pad).
const (
	nameWidth     = 31
	schemaWidth   = 44
	ContractWidth = 1 + nameWidth + 4 + 4 + schemaWidth + schemaWidth // 128
)

// Kind distinguishes a request/response endpoint from a stream.
type Kind uint32

const (
	KindCommand Kind = 0
	KindStream  Kind = 1
)

// Contract is the fixed-width descriptor exposed by the `?` introspection
// endpoint, one per registered command or stream, in registration order.
type Contract struct {
	ID             byte
	Name           string
	ResponseSize   uint32
	Type           Kind
	RequestSchema  string
	ResponseSchema string
}

// Encode appends the packed wire image of c onto dst and returns the
// extended slice.
func (c Contract) Encode(dst []byte) []byte {
	var buf [ContractWidth]byte
	buf[0] = c.ID
	copy(buf[1:1+nameWidth], c.Name)
	binary.LittleEndian.PutUint32(buf[1+nameWidth:], c.ResponseSize)
	binary.LittleEndian.PutUint32(buf[1+nameWidth+4:], uint32(c.Type))
	reqOff := 1 + nameWidth + 8
	copy(buf[reqOff:reqOff+schemaWidth], c.RequestSchema)
	respOff := reqOff + schemaWidth
	copy(buf[respOff:respOff+schemaWidth], c.ResponseSchema)
	return append(dst, buf[:]...)
}

// Decode parses a single packed Contract from the front of src. It is
// used by tests and tooling that verify the introspection wire format;
// the core itself only ever encodes.
func Decode(src []byte) (Contract, bool) {
	if len(src) < ContractWidth {
		return Contract{}, false
	}
	reqOff := 1 + nameWidth + 8
	respOff := reqOff + schemaWidth
	return Contract{
		ID:             src[0],
		Name:           trimZero(src[1 : 1+nameWidth]),
		ResponseSize:   binary.LittleEndian.Uint32(src[1+nameWidth:]),
		Type:           Kind(binary.LittleEndian.Uint32(src[1+nameWidth+4:])),
		RequestSchema:  trimZero(src[reqOff : reqOff+schemaWidth]),
		ResponseSchema: trimZero(src[respOff : respOff+schemaWidth]),
	}, true
}

func trimZero(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}
