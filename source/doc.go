// Package source provides ready-made implementations of types.Repository.
//
// Two implementations are included:
//
//   - Static: a fully in-memory repository. Sessions, favorites, and
//     thumbs-up counts live in process memory, and every write is applied
//     locally and re-emitted to active streams. Useful for demos, local
//     development, and tests that do not need a broker.
//
//   - NATS: a broker-backed repository. Session contents and thumbs-up
//     counts are watched from a JetStream KeyValue bucket, while favorite
//     toggles and coalesced increments are published as core NATS messages
//     for a backend service to apply.
//
// Both implementations stream values push-style: the streaming methods
// block, invoking the emit callback for the current value and every
// subsequent change, until the context is cancelled or the stream fails.
package source
