// Package textutil provides small text helpers shared by the CLI and the
// export service: term-frequency fingerprints for comparing lyric text against
// a transcribed word stream, display-title derivation, and filename
// sanitization.
package textutil
