// Package batch applies the RHD transform across the record table.
//
// A run moves through fixed states:
//
//	INIT -> [BACKUP] -> FETCH -> PROCESS* -> SUMMARIZE -> DONE
//
// INIT validates options and fails with *ConfigurationError before anything
// else happens. BACKUP runs only for forward and backward runs that ask for
// it; a failure aborts with *BackupError and no record is touched. FETCH
// selects the records the mode works on. PROCESS handles one record at a
// time, in store order, and folds its Outcome into the Summary.
//
// Per-record failures (unsupported symbols, malformed content, rejected
// writes) are recorded and never stop the batch. Writes already committed
// stay committed.
//
// Processing is strictly sequential: a record is transformed and written
// before the next one is looked at, so summary counts are deterministic and
// no write ever overlaps the backup. The context is checked between records;
// cancellation stops the loop and returns the partial summary.
package batch
