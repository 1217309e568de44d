package liveupdates

import "math/rand/v2"

// Rand - источник случайных значений симулятора
type Rand interface {
	// Float64 возвращает значение из [0, 1)
	Float64() float64
	// IntN возвращает значение из [0, n)
	IntN(n int) int
}

// globalRand использует потокобезопасный генератор math/rand/v2
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// NewSeededRand возвращает детерминированный генератор
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
