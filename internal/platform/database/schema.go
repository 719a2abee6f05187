package database

// Schema is the reference DDL. Integration tests apply it to a throwaway
// container; deployments manage it with their migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS sectors (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    parent_unit TEXT,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS collaborators (
    id             UUID PRIMARY KEY,
    name           TEXT NOT NULL,
    role           TEXT,
    home_sector_id UUID NOT NULL REFERENCES sectors (id),
    capabilities   TEXT[] NOT NULL DEFAULT '{}',
    active         BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS collaborator_credentials (
    collaborator_id UUID PRIMARY KEY REFERENCES collaborators (id),
    password_hash   BYTEA NOT NULL
);

CREATE TABLE IF NOT EXISTS processes (
    id               UUID PRIMARY KEY,
    number           TEXT NOT NULL UNIQUE,
    type             TEXT NOT NULL,
    specification    TEXT NOT NULL DEFAULT '',
    interested_party TEXT NOT NULL,
    origin_sector_id UUID NOT NULL REFERENCES sectors (id),
    creator_id       UUID NOT NULL REFERENCES collaborators (id),
    access_tier      TEXT NOT NULL,
    archived         BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS movements (
    id             UUID PRIMARY KEY,
    process_id     UUID NOT NULL REFERENCES processes (id),
    from_sector_id UUID NOT NULL REFERENCES sectors (id),
    to_sector_id   UUID NOT NULL REFERENCES sectors (id),
    observations   TEXT,
    keep_open      BOOLEAN NOT NULL DEFAULT FALSE,
    active         BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_process_active
    ON movements (process_id, active);

CREATE TABLE IF NOT EXISTS access_grants (
    id              UUID PRIMARY KEY,
    process_id      UUID NOT NULL REFERENCES processes (id),
    collaborator_id UUID NOT NULL REFERENCES collaborators (id),
    granted_by      UUID NOT NULL REFERENCES collaborators (id),
    created_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (process_id, collaborator_id)
);

CREATE TABLE IF NOT EXISTS documents (
    id                UUID PRIMARY KEY,
    process_id        UUID NOT NULL REFERENCES processes (id),
    name              TEXT NOT NULL,
    kind              TEXT NOT NULL,
    content           BYTEA,
    source_html       TEXT,
    content_hash      TEXT,
    verification_code TEXT UNIQUE,
    signer_name       TEXT,
    signer_role       TEXT,
    signed_at         TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_verification_code
    ON documents (verification_code) WHERE verification_code IS NOT NULL;

CREATE TABLE IF NOT EXISTS audit_events (
    id         UUID PRIMARY KEY,
    action     TEXT NOT NULL,
    process_id UUID NOT NULL,
    actor_id   UUID NOT NULL,
    detail     TEXT,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_process
    ON audit_events (process_id, created_at);
`
