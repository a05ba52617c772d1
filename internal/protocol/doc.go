// Package protocol provides the wire codecs taskd speaks: JSON and
// MessagePack. The same codec set serves two roles, payload encoding on the
// RPC surface (adapted to a gRPC codec) and client-side body encoding.
// Normalize canonicalizes decoded values so handler payloads look the same
// regardless of which codec carried them.
package protocol
