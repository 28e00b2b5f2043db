package ir

// EncodingVersion is stamped on every encoded AST. Bump it when the JSON
// shape produced by package encode changes, since ids change with it.
const EncodingVersion = "1"
