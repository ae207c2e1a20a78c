package db

// SchemaSQL defines the session persistence tables. Everything is keyed
// by session so multiple agents can share one database.
const SchemaSQL = `
    -- ==========================================================================
    -- MEMORY ENTRY TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS memory_entry SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session ON memory_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS interaction ON memory_entry TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS priority ON memory_entry TYPE float DEFAULT 1.0;
    DEFINE FIELD IF NOT EXISTS retrieval_keywords ON memory_entry TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS artifact_ref ON memory_entry TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS recorded ON memory_entry TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS memory_entry_session ON memory_entry FIELDS session;
    DEFINE INDEX IF NOT EXISTS memory_entry_recorded ON memory_entry FIELDS recorded;

    -- ==========================================================================
    -- ARTIFACT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS artifact SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS artifact_id ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS kind ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS payload ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS path ON artifact TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS outcome ON artifact TYPE string DEFAULT 'pending';
    DEFINE FIELD IF NOT EXISTS origin_interaction_id ON artifact TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON artifact TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS artifact_session ON artifact FIELDS session;
    DEFINE INDEX IF NOT EXISTS artifact_unique ON artifact FIELDS session, artifact_id UNIQUE;

    -- ==========================================================================
    -- STATE SNAPSHOT TABLE (one row per session)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS state_snapshot SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session ON state_snapshot TYPE string;
    DEFINE FIELD IF NOT EXISTS state ON state_snapshot TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS tier ON state_snapshot TYPE string DEFAULT 'base';
    DEFINE FIELD IF NOT EXISTS saved ON state_snapshot TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS state_snapshot_session ON state_snapshot FIELDS session UNIQUE;
`
