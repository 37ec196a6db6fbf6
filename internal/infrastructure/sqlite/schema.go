package sqlite

// Tiempos en nanosegundos Unix (UTC). Los números de motor y chasis son NULL hasta identificarse;
// UNIQUE admite varios NULL.
const schema = `
CREATE TABLE IF NOT EXISTS units (
	id               TEXT PRIMARY KEY,
	brand            TEXT NOT NULL DEFAULT '',
	model            TEXT NOT NULL DEFAULT '',
	color            TEXT NOT NULL,
	engine_number    TEXT UNIQUE,
	chassis_number   TEXT UNIQUE,
	status           TEXT NOT NULL,
	location         TEXT NOT NULL,
	batch_id         TEXT NOT NULL DEFAULT '',
	supplier_invoice TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_units_status ON units(status);
CREATE INDEX IF NOT EXISTS idx_units_location ON units(location);
CREATE INDEX IF NOT EXISTS idx_units_batch ON units(batch_id);

CREATE TABLE IF NOT EXISTS unit_events (
	id            TEXT PRIMARY KEY,
	unit_id       TEXT NOT NULL REFERENCES units(id),
	seq           INTEGER NOT NULL,
	event_type    TEXT NOT NULL,
	before_data   TEXT,
	after_data    TEXT,
	actor         TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	transfer_id   TEXT NOT NULL DEFAULT '',
	batch_id      TEXT NOT NULL DEFAULT '',
	from_location TEXT NOT NULL DEFAULT '',
	to_location   TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL,
	UNIQUE (unit_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_unit_events_created ON unit_events(created_at);

CREATE TRIGGER IF NOT EXISTS unit_events_no_update BEFORE UPDATE ON unit_events
BEGIN
	SELECT RAISE(ABORT, 'unit_events es de solo inserción');
END;
CREATE TRIGGER IF NOT EXISTS unit_events_no_delete BEFORE DELETE ON unit_events
BEGIN
	SELECT RAISE(ABORT, 'unit_events es de solo inserción');
END;

CREATE TABLE IF NOT EXISTS transfers (
	id            TEXT PRIMARY KEY,
	unit_id       TEXT NOT NULL REFERENCES units(id),
	from_location TEXT NOT NULL,
	to_location   TEXT NOT NULL,
	status        TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	eta           INTEGER,
	created_by    TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	dispatched_by TEXT NOT NULL DEFAULT '',
	dispatched_at INTEGER,
	received_by   TEXT NOT NULL DEFAULT '',
	received_at   INTEGER,
	cancelled_by  TEXT NOT NULL DEFAULT '',
	cancelled_at  INTEGER
);
CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers(status);
CREATE UNIQUE INDEX IF NOT EXISTS ux_transfers_active_unit ON transfers(unit_id)
	WHERE status IN ('PENDING', 'IN_TRANSIT');

CREATE TABLE IF NOT EXISTS shipments (
	batch_code       TEXT PRIMARY KEY,
	supplier_invoice TEXT NOT NULL,
	imported_by      TEXT NOT NULL,
	imported_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	id            TEXT PRIMARY KEY,
	unit_id       TEXT NOT NULL UNIQUE REFERENCES units(id),
	receipt       TEXT UNIQUE,
	customer_name TEXT NOT NULL DEFAULT '',
	branch        TEXT NOT NULL,
	sold_by       TEXT NOT NULL,
	sold_at       INTEGER NOT NULL
);
`
