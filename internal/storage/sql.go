package storage

import (
	_ "embed"
)

const (
	insertRunSQL = `
INSERT INTO runs (
                  created_at,
                  data_dir,
                  config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectRunSQL = `
SELECT
    id,
    created_at,
    data_dir,
    config
FROM runs
WHERE
    id = ?`

	selectRunsSQL = `
SELECT
    id,
    created_at,
    data_dir,
    config
FROM runs
ORDER BY created_at`

	insertResultSQL = `
INSERT INTO results (run_id,
                     subject,
                     trial,
                     limb,
                     valid,
                     reject_reason,
                     gc_s,
                     to_s,
                     ld_s,
                     gct_s,
                     ft_s,
                     height_flight_m,
                     height_peak_m,
                     rsi_flight,
                     rsi_peak,
                     median_rsi_flight,
                     median_rsi_peak,
                     asymmetry_flight,
                     asymmetry_peak)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectResultsSQL = `
SELECT
    id,
    run_id,
    subject,
    trial,
    limb,
    valid,
    reject_reason,
    gc_s,
    to_s,
    ld_s,
    gct_s,
    ft_s,
    height_flight_m,
    height_peak_m,
    rsi_flight,
    rsi_peak,
    median_rsi_flight,
    median_rsi_peak,
    asymmetry_flight,
    asymmetry_peak
FROM results
WHERE
    run_id = ?`
)

//go:embed schema.sql
var initSchemaSQL string
