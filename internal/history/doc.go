// Package history persists a record of alignment runs in SQLite.
//
// Each run stores the inputs it read, the files it wrote, and the alignment
// counters, so the CLI can list past runs and spot songs whose lyrics mostly
// failed to anchor.
package history
