package repository

// PostgresSchema creates the relational tables used by the threshold and prediction-config stores.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS machines (
    id                  BIGSERIAL PRIMARY KEY,
    name                TEXT NOT NULL,
    production_line_id  BIGINT
)`,
	`CREATE TABLE IF NOT EXISTS alert_thresholds (
    id                       BIGSERIAL PRIMARY KEY,
    machine_id               BIGINT,
    production_line_id       BIGINT,
    target_oee               DOUBLE PRECISION NOT NULL DEFAULT 85,
    warning_threshold        DOUBLE PRECISION NOT NULL DEFAULT 80,
    critical_threshold       DOUBLE PRECISION NOT NULL DEFAULT 70,
    drop_alert_threshold     DOUBLE PRECISION NOT NULL DEFAULT 5,
    relative_drop_threshold  DOUBLE PRECISION NOT NULL DEFAULT 10,
    availability_target      DOUBLE PRECISION,
    performance_target       DOUBLE PRECISION,
    quality_target           DOUBLE PRECISION,
    is_active                BOOLEAN NOT NULL DEFAULT TRUE,
    created_by               BIGINT,
    created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS alert_thresholds_scope_idx
    ON alert_thresholds (machine_id, production_line_id, is_active, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS prediction_configs (
    id                BIGSERIAL PRIMARY KEY,
    user_id           BIGINT NOT NULL,
    config_name       VARCHAR(100) NOT NULL,
    config_type       VARCHAR(10) NOT NULL DEFAULT 'oee',
    algorithm         VARCHAR(20) NOT NULL DEFAULT 'linear',
    prediction_days   INT NOT NULL DEFAULT 14,
    confidence_level  DOUBLE PRECISION NOT NULL DEFAULT 95,
    alert_threshold   DOUBLE PRECISION NOT NULL DEFAULT 5,
    moving_avg_window INT,
    smoothing_factor  DOUBLE PRECISION,
    historical_days   INT NOT NULL DEFAULT 30,
    is_default        BOOLEAN NOT NULL DEFAULT FALSE,
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS prediction_configs_user_idx
    ON prediction_configs (user_id, config_type, is_active)`,
}
