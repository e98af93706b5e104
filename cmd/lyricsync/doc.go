// Package main hosts the lyricsync CLI entrypoint and command graph.
//
// The Cobra-based command tree turns lyric text plus word timestamps into LRC
// and SRT files, validates existing subtitle files, browses the run history,
// and scaffolds configuration. Alignment and serialization live in the
// internal packages; commands here only resolve configuration, build loggers,
// and render results for the terminal.
package main
