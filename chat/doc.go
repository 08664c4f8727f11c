// Package chat owns the live connection to Twitch IRC and the message
// fan-out pipeline behind it.
//
// It provides two pieces:
//   - Reconciler: holds the single IRC connection and, on a fixed interval,
//     recomputes the union of every tenant's tracked channels. When the set
//     differs from what the live connection is subscribed to, it tears the
//     connection down and dials a fresh one on the new set. Reconnects are
//     full, not incremental; the design accepts a brief coverage gap in
//     exchange for a much simpler state machine.
//   - Pipeline: invoked once per inbound message. It scores the text,
//     resolves which tenants track the source channel, and writes one
//     message document per tenant. Per-tenant writes are independent; one
//     failed insert never blocks the others.
//
// Credentials: the IRC client uses TWITCH_BOT_USERNAME/TWITCH_OAUTH_TOKEN
// when present and falls back to an anonymous (justinfan) connection
// otherwise, which is read-only and sufficient for ingestion.
package chat
