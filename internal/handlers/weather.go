// Package handlers contains the demonstration command handlers from
// spec.md §8 scenario 1. The "concrete set of registered handlers" is
// explicitly out of scope per spec.md §1; these exist to exercise the
// registry, dispatcher, and relational store end to end in tests and in
// the runnable binary.
package handlers

import (
	"encoding/binary"

	"corehub/internal/store"
)

const weatherRecordWidth = 4 + 4 + 16 // date + temp + zero-padded summary

// Weather returns a command handler that looks up the forecast named by
// the request body's first four bytes (little-endian date) and replies
// with the fixed 24-byte record spec.md §8 scenario 1 uses as its
// worked example.
func Weather(s *store.Store) func(connID uint64, request []byte) []byte {
	return func(connID uint64, request []byte) []byte {
		if len(request) < 4 {
			return nil
		}
		date := binary.LittleEndian.Uint32(request[:4])
		rec, ok, err := s.Weather(date)
		if err != nil || !ok {
			return nil
		}
		return encodeWeather(rec)
	}
}

func encodeWeather(rec store.WeatherRecord) []byte {
	buf := make([]byte, weatherRecordWidth)
	binary.LittleEndian.PutUint32(buf[0:4], rec.Date)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(rec.Temp))
	copy(buf[8:24], rec.Summary)
	return buf
}
