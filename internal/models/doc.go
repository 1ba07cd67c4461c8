// Package models defines the core domain models for splitbill.
//
// # Models
//
//   - Bill: a parsed and edited receipt (items plus aggregate charges)
//   - Item: one receipt line, assignable to one or more participants
//   - Participant: a person the bill is split between
//   - PaymentMethod: where participants should send their share
//   - PersonSummary: calculated allocation for one participant
//   - Share: a stored snapshot addressed by a generated ID
//
// Bills and participants live only in the caller's memory for the length of a
// session. The only persisted shape is Share, which holds the snapshot as
// opaque JSON.
//
// # Design Principles
//
// 1. **Wire compatibility**: JSON tags match the browser client (assignedTo, serviceCharge, ...)
// 2. **Value semantics**: derived models are recomputed, never mutated in place
// 3. **Avoid circular references**: use ID strings instead of pointers for relationships
package models
