// Package memzero wipes key material held in byte slices.
package memzero

import "runtime"

// Zero overwrites every given buffer with zeros.
//
//go:noinline
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
	runtime.KeepAlive(bufs)
}
