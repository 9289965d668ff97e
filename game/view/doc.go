// Package view renders authoritative snapshots into terminal output.
//
// The view package implements:
//   - Transient banners with a fixed auto-clear interval
//   - The reconciler turning a GameState plus session identity into a Board
//   - A plain-text printer for the interactive terminal client
//
// Reconciliation:
//
// BuildBoard is a pure function: it takes one snapshot and the viewer's
// identity and recomputes everything from scratch. A card is playable only
// when the viewer holds a player key, the snapshot says it is the viewer's
// turn, and the card sits in the viewer's own seat. No render state survives
// from one snapshot to the next.
//
// The reconciler never touches the network. Outbound actions are issued
// elsewhere, gated on the same playable flags this package computes, and the
// server's next snapshot is the only correction mechanism.
package view
