// Package lyrics aligns plain-text song lyrics against a time-ordered word
// stream and produces time-bounded lines.
//
// The word stream comes from an external alignment service (one entry per sung
// token, in time order). Each lyric line is anchored on the first word-stream
// position that matches its first token, searched forward from a cursor that
// only ever advances. Lines that cannot be anchored are dropped rather than
// interpolated, so the output may contain fewer lines than the source text.
//
// Everything in this package is pure: no I/O, no shared state, and identical
// inputs always yield identical output.
package lyrics
