// Package textutil provides text processing utilities for transcript handling
// and filename sanitization.
//
// The primary use cases are:
//   - Detecting CJK script runs so transcript fragments can be joined without
//     inserting spurious spaces
//   - Joining segment texts with script-aware separators
//   - Sanitizing filenames and path segments for safe filesystem use
package textutil
