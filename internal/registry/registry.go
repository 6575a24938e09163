// Package registry holds the endpoint contract table and the command and
// stream handler maps described in spec.md §3 and §4.3. Registration is
// not thread-safe and must complete before the reactor starts; the
// registry is read-only for the remainder of the process lifetime.
package registry

import "fmt"

// CommandHandler answers a single request/response command.
type CommandHandler func(connID uint64, request []byte) []byte

// StreamProducer produces one tick's payload for a stream channel. An
// empty return value means "nothing to send this tick" — the pump
// skips the broadcast without evicting anyone.
type StreamProducer func() []byte

// IntrospectionID is the reserved pseudo-endpoint id for the contract
// array image.
const IntrospectionID byte = '?'

// HealthID is the reserved id for the root HTTP health check.
const HealthID byte = 0

// Registry is the process-wide, append-only table of endpoints.
type Registry struct {
	commands  map[byte]CommandHandler
	streams   map[byte]StreamProducer
	contracts []Contract
	started   bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		commands: make(map[byte]CommandHandler),
		streams:  make(map[byte]StreamProducer),
	}
}

// RegisterCommand appends a contract row and installs a request/response
// handler for id. Must be called before Start.
func (r *Registry) RegisterCommand(id byte, name string, advisorySize uint32, requestSchema, responseSchema string, handler CommandHandler) {
	r.mustNotStarted()
	r.mustNotReserved(id)
	r.contracts = append(r.contracts, Contract{
		ID:             id,
		Name:           name,
		ResponseSize:   advisorySize,
		Type:           KindCommand,
		RequestSchema:  requestSchema,
		ResponseSchema: responseSchema,
	})
	r.commands[id] = handler
}

// RegisterStream appends a contract row and installs a stream producer
// for id. Must be called before Start.
func (r *Registry) RegisterStream(id byte, name string, advisorySize uint32, responseSchema string, producer StreamProducer) {
	r.mustNotStarted()
	r.mustNotReserved(id)
	r.contracts = append(r.contracts, Contract{
		ID:             id,
		Name:           name,
		ResponseSize:   advisorySize,
		Type:           KindStream,
		ResponseSchema: responseSchema,
	})
	r.streams[id] = producer
}

func (r *Registry) mustNotStarted() {
	if r.started {
		panic("registry: cannot register after Start")
	}
}

func (r *Registry) mustNotReserved(id byte) {
	if id == IntrospectionID || id == HealthID {
		panic(fmt.Sprintf("registry: id %q is reserved", id))
	}
}

// Start freezes the registry. After Start, Command/Stream/IsStream/
// StreamIDs/ContractImage are safe for unsynchronized concurrent reads; registering
// new endpoints panics.
func (r *Registry) Start() {
	r.started = true
}

// Command returns the handler registered for id, if any.
func (r *Registry) Command(id byte) (CommandHandler, bool) {
	h, ok := r.commands[id]
	return h, ok
}

// Stream returns the producer registered for id, if any.
func (r *Registry) Stream(id byte) (StreamProducer, bool) {
	p, ok := r.streams[id]
	return p, ok
}

// IsStream reports whether id names a registered stream channel.
func (r *Registry) IsStream(id byte) bool {
	_, ok := r.streams[id]
	return ok
}

// StreamIDs returns every registered stream id, for the pump's per-tick
// iteration.
func (r *Registry) StreamIDs() []byte {
	ids := make([]byte, 0, len(r.streams))
	for id := range r.streams {
		ids = append(ids, id)
	}
	return ids
}

// ContractImage returns the concatenated packed byte image of every
// registered contract, in registration order — the response body for
// the `?` introspection endpoint.
func (r *Registry) ContractImage() []byte {
	buf := make([]byte, 0, len(r.contracts)*ContractWidth)
	for _, c := range r.contracts {
		buf = c.Encode(buf)
	}
	return buf
}

// Len returns the number of registered contracts.
func (r *Registry) Len() int {
	return len(r.contracts)
}
