package registry

import "testing"

func TestContractImageRoundTrip(t *testing.T) {
	r := New()
	r.RegisterCommand('1', "weather", 24, "", "date,temp,summary", func(uint64, []byte) []byte { return nil })
	r.RegisterCommand('2', "echo", 0, "bytes", "bytes", func(uint64, []byte) []byte { return nil })
	r.RegisterStream('W', "world", 64, "players", func() []byte { return nil })
	r.Start()

	img := r.ContractImage()
	if got, want := len(img), 3*ContractWidth; got != want {
		t.Fatalf("image length = %d, want %d", got, want)
	}

	rest := img
	var names []string
	for len(rest) > 0 {
		c, ok := Decode(rest)
		if !ok {
			t.Fatalf("decode failed with %d bytes remaining", len(rest))
		}
		names = append(names, c.Name)
		rest = rest[ContractWidth:]
	}
	want := []string{"weather", "echo", "world"}
	for i, w := range want {
		if names[i] != w {
			t.Errorf("contract[%d].Name = %q, want %q", i, names[i], w)
		}
	}
}

func TestRegisterAfterStartPanics(t *testing.T) {
	r := New()
	r.Start()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering after Start")
		}
	}()
	r.RegisterCommand('1', "late", 0, "", "", func(uint64, []byte) []byte { return nil })
}

func TestReservedIntrospectionIDRejected(t *testing.T) {
	r := New()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering reserved id")
		}
	}()
	r.RegisterCommand('?', "bad", 0, "", "", func(uint64, []byte) []byte { return nil })
}

func TestCommandAndStreamAreDisjoint(t *testing.T) {
	r := New()
	r.RegisterCommand('1', "a", 0, "", "", func(uint64, []byte) []byte { return nil })
	if r.IsStream('1') {
		t.Fatal("command id reported as stream")
	}
	if _, ok := r.Stream('1'); ok {
		t.Fatal("Stream() found a handler for a command id")
	}
}
