package registry

import "testing"

func BenchmarkContractEncode(b *testing.B) {
	c := Contract{
		ID:             '1',
		Name:           "weather",
		ResponseSize:   24,
		Type:           KindCommand,
		RequestSchema:  "date:u32",
		ResponseSchema: "date:u32,temp:i32,summary:char[16]",
	}
	dst := make([]byte, 0, ContractWidth)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		dst = c.Encode(dst[:0])
	}
}

func BenchmarkContractDecode(b *testing.B) {
	c := Contract{
		ID:             '1',
		Name:           "weather",
		ResponseSize:   24,
		Type:           KindCommand,
		RequestSchema:  "date:u32",
		ResponseSchema: "date:u32,temp:i32,summary:char[16]",
	}
	buf := c.Encode(nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Decode(buf)
	}
}
