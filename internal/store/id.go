package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RoomCodeAlphabet leaves out I, O, 0 and 1 so codes survive being read aloud.
const (
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	RoomCodeLength   = 6
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex

	codeRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
	codeRandMu sync.Mutex
)

func NewID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

func NewRoomCode() string {
	codeRandMu.Lock()
	defer codeRandMu.Unlock()
	b := make([]byte, RoomCodeLength)
	for i := range b {
		b[i] = RoomCodeAlphabet[codeRand.Intn(len(RoomCodeAlphabet))]
	}
	return string(b)
}
