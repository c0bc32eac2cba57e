// Package seed forwards one seed value to every randomness source the
// module relies on, so runs that mix math/rand and math/rand/v2 consumers
// are reproducible from a single call.
package seed

import (
	mrand "math/rand"
	randv2 "math/rand/v2"
)

// Rand is the shared math/rand/v2 source. It is replaced, not reseeded in
// place, by Set; callers should read it fresh rather than caching it.
var Rand = randv2.New(randv2.NewPCG(0, 0))

// Set seeds the process-wide math/rand source and resets Rand to a PCG
// derived from s. Not safe to call concurrently with readers of Rand.
func Set(s int64) {
	mrand.Seed(s) //nolint:staticcheck // seeding the global v1 source is the point
	Rand = randv2.New(randv2.NewPCG(uint64(s), uint64(s)^0x9e3779b97f4a7c15))
}
