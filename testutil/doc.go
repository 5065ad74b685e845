// Package testutil provides testing utilities for litedb.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source and generators for records with
// scalar, null and array attributes.
//
// # Random Records
//
//	rng := testutil.NewRNG(seed)
//	people := rng.People(100)
//	op := rng.Intn(3)
//
// # Reference Model
//
//	model := testutil.NewModel[testutil.Person]()
//	slot := model.Insert(p)
//	model.Delete(func(p testutil.Person) bool { return p.Age > 40 })
package testutil
