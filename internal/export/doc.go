// Package export runs an alignment job end to end: it reads the lyric text and
// the word timestamps, aligns them, renders the requested subtitle formats,
// writes the files, and records the run in history.
package export
