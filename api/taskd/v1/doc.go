// Package taskdv1 defines the TaskDaemon RPC surface: wire messages, the
// service descriptor, and a thin client. Messages are plain structs carried
// by a pluggable codec (JSON or MessagePack) instead of protobuf, so the
// same types serve both encodings; field tags keep the wire names stable.
package taskdv1
