package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at      DATETIME NOT NULL,
    total           INTEGER NOT NULL DEFAULT 0,
    fresh_ratio     REAL NOT NULL DEFAULT 0,
    aborted         BOOLEAN NOT NULL DEFAULT 0,
    warnings        TEXT NOT NULL DEFAULT '[]',
    global_keywords TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_records (
    run_id       INTEGER NOT NULL REFERENCES runs(id),
    id           TEXT NOT NULL,
    title        TEXT NOT NULL,
    url          TEXT NOT NULL DEFAULT '',
    source       TEXT NOT NULL,
    score        REAL NOT NULL DEFAULT 0,
    velocity     REAL NOT NULL DEFAULT 0,
    badge        TEXT NOT NULL DEFAULT '',
    keywords     TEXT NOT NULL DEFAULT '[]',
    timestamp    DATETIME NOT NULL,
    language     TEXT NOT NULL DEFAULT 'en',
    category     TEXT NOT NULL DEFAULT '',
    image_url    TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT '',
    source_count INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_run_records_run ON run_records(run_id);
`
