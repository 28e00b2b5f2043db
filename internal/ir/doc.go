// Package ir is the JSON value model used to serialise TypeQL ASTs.
//
// Package encode compiles pattern and query values into ir values; this
// package only knows about JSON. It imports nothing internal.
//
// Key design constraints:
//   - NO float types: doubles are encoded as strings by package encode
//   - NO null: absent fields are omitted
//   - All object keys use snake_case
//   - Canonical output follows RFC 8785 with NFC-normalised strings, so
//     equal ASTs always hash to the same id
package ir
