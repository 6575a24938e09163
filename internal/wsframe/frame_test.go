package wsframe

import (
	"bytes"
	"testing"
)

func TestAcceptKeyRFC6455Example(t *testing.T) {
	got := AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Fatalf("AcceptKey() = %q, want %q", got, want)
	}
}

func TestAppendHeaderLengths(t *testing.T) {
	cases := []struct {
		length int
		want   []byte
	}{
		{125, []byte{0x82, 125}},
		{126, []byte{0x82, 126, 0x00, 0x7E}},
		{65536, []byte{0x82, 127, 0, 0, 0, 0, 0, 1, 0, 0}},
	}
	for _, c := range cases {
		got := AppendHeader(nil, c.length)
		if !bytes.Equal(got, c.want) {
			t.Errorf("AppendHeader(%d) = % x, want % x", c.length, got, c.want)
		}
		if len(got) != HeaderLen(c.length) {
			t.Errorf("HeaderLen(%d) = %d, len(header) = %d", c.length, HeaderLen(c.length), len(got))
		}
	}
}

func TestFrameConcatenatesHeaderAndPayload(t *testing.T) {
	payload := []byte("hello")
	f := Frame(payload)
	if !bytes.Equal(f[:2], []byte{0x82, 5}) {
		t.Fatalf("unexpected header: % x", f[:2])
	}
	if !bytes.Equal(f[2:], payload) {
		t.Fatalf("unexpected payload: %s", f[2:])
	}
}
