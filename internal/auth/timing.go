package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig controls the artificial delay applied to failed logins
type TimingConfig struct {
	BaseDelayMs   int
	RandomDelayMs int
}

// TimingDelay evens out the observable latency of authentication failures so
// "no such account" and "wrong password" cannot be told apart by timing.
type TimingDelay struct {
	config TimingConfig
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// Wait sleeps for the base delay plus a random jitter. No-op on success.
func (td *TimingDelay) Wait(success bool) {
	if success {
		return
	}

	delay := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.RandomDelayMs > 0 {
		jitter, err := cryptoRandIntn(td.config.RandomDelayMs)
		if err == nil {
			delay += time.Duration(jitter) * time.Millisecond
		}
	}

	if delay > 0 {
		time.Sleep(delay)
	}
}

// cryptoRandIntn returns a random int in [0, max) from crypto/rand.
func cryptoRandIntn(max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}

	return int(binary.BigEndian.Uint64(buf[:]) % uint64(max)), nil
}
