// Package server implements the lifelink HTTP surface.
//
// Owns:
//   - routing, handlers and response shapes
//   - client address detection and per-client intake rate limiting
//   - panic recovery at the HTTP boundary
//
// Does not own:
//   - storage (history.Store), sanitization, credential checks (auth.Guard)
//
// Invariants:
//   - POST /message is public; GET /read_messages and POST /clear_messages
//     always pass through the Guard
//   - error responses never carry internal detail
//   - JSON responses go through writeJSON
package server
