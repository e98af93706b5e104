// Package subtitles renders aligned lyric lines as LRC and SRT text and reads
// those formats back for validation.
//
// Serialization is deterministic and lossless with respect to line order: the
// writers emit exactly the lines they are given and never reorder, filter, or
// validate timing. Timestamps are truncated, never rounded.
package subtitles
