// Package testsupport provides shared fixtures for lyricsync tests.
package testsupport
