// Package value provides the dynamic tagged Value that flows between
// abilities and triggers.
//
// A Value holds exactly one payload from a closed set of kinds (Void, Char,
// Bool, Int, UInt, Float, Double, String, Binary, Vector3F, Vector3D, List).
// The payload is a sealed interface: only the types in this package
// implement it, so every conversion is a type switch over a known set.
//
// Key rules:
//   - The zero Value is Void. Void never carries a payload.
//   - Every Create* call releases the previous payload first, so calling
//     it repeatedly on the same Value is safe.
//   - Conversions never panic. Malformed input degrades to a zero result;
//     the returned error carries the Status (NoInput, InvalidInput,
//     MissingSupport) for callers that care.
//   - Copying a Value struct aliases Binary and List payloads. Use Copy
//     for an independent deep copy.
//
// Build tags select the constrained-target profiles:
//
//	atmo_static    payloads bounded to StaticSize bytes (no-heap core)
//	atmo_slim      List kind disabled
//	atmo_nofloat   Float getter reports MissingSupport
//	atmo_nodouble  Double getter reports MissingSupport
//	atmo_noformat  number to string formatting reports MissingSupport
package value
