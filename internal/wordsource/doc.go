// Package wordsource decodes word-timestamp payloads produced by alignment
// services into the time-ordered word stream consumed by the lyrics aligner.
//
// Services disagree on key spelling (start/end versus start_s/end_s, text
// versus word) and on nesting (bare arrays, a words list, WhisperX-style
// segments). Decode accepts all of these and normalizes them to seconds.
// Entries without a start or end time are counted and dropped.
package wordsource
