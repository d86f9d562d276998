package store

// schemaSQL is shared by SQLite and PostgreSQL; amounts are TEXT so decimals
// round-trip exactly on both.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS debts (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    name                 TEXT NOT NULL,
    kind                 TEXT NOT NULL DEFAULT 'other',
    principal            TEXT NOT NULL,
    outstanding          TEXT NOT NULL,
    interest_rate        TEXT NOT NULL,
    emi_amount           TEXT NOT NULL,
    remaining_tenure     INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    extra_payment        TEXT NOT NULL,
    total_debt           TEXT NOT NULL,
    snowball_months      INTEGER,
    avalanche_months     INTEGER,
    interest_saved       TEXT NOT NULL,
    recommended          TEXT,
    payload              TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id);
CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(user_id, created_at);
`
