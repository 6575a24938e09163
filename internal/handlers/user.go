package handlers

import (
	"encoding/binary"

	"corehub/internal/store"
)

// User returns a command handler that looks up a display name by the
// 8-byte little-endian user id carried in the request body.
func User(s *store.Store) func(connID uint64, request []byte) []byte {
	return func(connID uint64, request []byte) []byte {
		if len(request) < 8 {
			return nil
		}
		id := binary.LittleEndian.Uint64(request[:8])
		name, ok, err := s.DisplayName(id)
		if err != nil || !ok {
			return nil
		}
		return []byte(name)
	}
}
