// Package testutil provides testing utilities for kernelscore.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and helpers that build random
// dictionaries, models and sparse inputs from it.
//
// # Random Models
//
//	rng := testutil.NewRNG(seed)
//	m := rng.Model(testutil.ModelConfig{Families: 3, NamesPerFamily: 4, SupportVectors: 16})
//	fv := rng.Features(m.Dictionary(), 0.5)
//	score := m.ScoreItem(fv)
package testutil
