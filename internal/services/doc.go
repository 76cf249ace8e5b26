// Package services defines shared utilities consumed by the conversion
// controller, the advisory client and the HTTP surface.
//
// Key responsibilities:
//   - Context helpers that stamp conversion IDs and correlation identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified with errors.Is and reported as short categories.
package services
