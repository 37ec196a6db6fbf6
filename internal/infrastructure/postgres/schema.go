package postgres

const schema = `
CREATE TABLE IF NOT EXISTS units (
	id               TEXT PRIMARY KEY,
	brand            TEXT NOT NULL DEFAULT '',
	model            TEXT NOT NULL DEFAULT '',
	color            TEXT NOT NULL,
	engine_number    TEXT,
	chassis_number   TEXT,
	status           TEXT NOT NULL,
	location         TEXT NOT NULL,
	batch_id         TEXT NOT NULL DEFAULT '',
	supplier_invoice TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	CONSTRAINT units_engine_number_key UNIQUE (engine_number),
	CONSTRAINT units_chassis_number_key UNIQUE (chassis_number),
	CONSTRAINT units_color_check CHECK (color IN ('red', 'black', 'green', 'pink', 'grey', 'blue')),
	CONSTRAINT units_status_check CHECK (status IN ('EN_BODEGA_NO_IDENTIFICADA', 'IDENTIFICADA_EN_TALLER',
		'EN_TRANSITO_TALLER_SUCURSAL', 'EN_SUCURSAL_DISPONIBLE', 'VENDIDA'))
);
CREATE INDEX IF NOT EXISTS idx_units_status ON units (status);
CREATE INDEX IF NOT EXISTS idx_units_location ON units (location);
CREATE INDEX IF NOT EXISTS idx_units_batch ON units (batch_id);

CREATE TABLE IF NOT EXISTS unit_events (
	id            TEXT PRIMARY KEY,
	unit_id       TEXT NOT NULL REFERENCES units (id),
	seq           BIGINT NOT NULL,
	event_type    TEXT NOT NULL,
	before_data   JSONB,
	after_data    JSONB,
	actor         TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	transfer_id   TEXT NOT NULL DEFAULT '',
	batch_id      TEXT NOT NULL DEFAULT '',
	from_location TEXT NOT NULL DEFAULT '',
	to_location   TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	CONSTRAINT unit_events_unit_seq_key UNIQUE (unit_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_unit_events_created ON unit_events (created_at);

CREATE OR REPLACE FUNCTION unit_events_append_only() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'unit_events es de solo inserción';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS unit_events_no_mutation ON unit_events;
CREATE TRIGGER unit_events_no_mutation BEFORE UPDATE OR DELETE ON unit_events
	FOR EACH ROW EXECUTE FUNCTION unit_events_append_only();

CREATE TABLE IF NOT EXISTS transfers (
	id            TEXT PRIMARY KEY,
	unit_id       TEXT NOT NULL REFERENCES units (id),
	from_location TEXT NOT NULL,
	to_location   TEXT NOT NULL,
	status        TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	eta           TIMESTAMPTZ,
	created_by    TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	dispatched_by TEXT NOT NULL DEFAULT '',
	dispatched_at TIMESTAMPTZ,
	received_by   TEXT NOT NULL DEFAULT '',
	received_at   TIMESTAMPTZ,
	cancelled_by  TEXT NOT NULL DEFAULT '',
	cancelled_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers (status);
CREATE UNIQUE INDEX IF NOT EXISTS ux_transfers_active_unit ON transfers (unit_id)
	WHERE status IN ('PENDING', 'IN_TRANSIT');

CREATE TABLE IF NOT EXISTS shipments (
	batch_code       TEXT NOT NULL,
	supplier_invoice TEXT NOT NULL,
	imported_by      TEXT NOT NULL,
	imported_at      TIMESTAMPTZ NOT NULL,
	CONSTRAINT shipments_pkey PRIMARY KEY (batch_code)
);

CREATE TABLE IF NOT EXISTS sales (
	id            TEXT PRIMARY KEY,
	unit_id       TEXT NOT NULL REFERENCES units (id),
	receipt       TEXT,
	customer_name TEXT NOT NULL DEFAULT '',
	branch        TEXT NOT NULL,
	sold_by       TEXT NOT NULL,
	sold_at       TIMESTAMPTZ NOT NULL,
	CONSTRAINT sales_unit_id_key UNIQUE (unit_id),
	CONSTRAINT sales_receipt_key UNIQUE (receipt)
);
`
