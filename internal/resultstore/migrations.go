package resultstore

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id            TEXT PRIMARY KEY,
	image         TEXT NOT NULL,
	folder        TEXT NOT NULL,
	pattern       TEXT NOT NULL DEFAULT '',
	timeout       TEXT NOT NULL,
	parallelism   INTEGER NOT NULL DEFAULT 1,
	extra_args    TEXT NOT NULL DEFAULT '[]',
	batch_dir     TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP,
	total         INTEGER NOT NULL DEFAULT 0,
	completed     INTEGER NOT NULL DEFAULT 0,
	timed_out     INTEGER NOT NULL DEFAULT 0,
	launch_failed INTEGER NOT NULL DEFAULT 0,
	interrupted   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS runs (
	batch_id     TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	input        TEXT NOT NULL,
	run_dir      TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	exit_code    INTEGER NOT NULL DEFAULT 0,
	elapsed_secs REAL NOT NULL DEFAULT 0,
	started_at   TIMESTAMP,
	finished_at  TIMESTAMP,
	error        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (batch_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_batch ON runs(batch_id);
CREATE INDEX IF NOT EXISTS idx_batches_started ON batches(started_at);
`
