// Package flows holds one orchestrator per engine operation.
//
// Each Run* function takes a dependency struct of plain funcs and sequences
// validation, storage, hashing, lockout and token issuance for a single
// request. The engine builds the dependency structs once; tests build them
// by hand.
//
// Flows hold no state between calls, perform no I/O except through their
// dependencies, and must not import the root authcore package. Errors
// returned from flows are the kinds declared in internal/model.
package flows
