// Package domain contains the core domain model for the returns desk.
//
// This package defines:
//   - The return request draft and its fixed enumerations (reasons, refund methods)
//   - Notifications emitted by the return form
//   - The origin policy used for CORS decisions
//   - Session types shared between the edge filter and the identity adapters
//   - Domain errors
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database, HTTP routing, etc.)
//   - Value types validate their own invariants
package domain
