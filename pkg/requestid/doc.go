// Package requestid implements representation-independent hashing of
// structured records: the stable, field-order-free identifiers that
// signatures in this system are computed over.
package requestid
