package database

const (
	selectFiles = `SELECT name, next_seq FROM files ORDER BY name`

	selectVersions = `
SELECT id, file_name, version_id, created_at, fingerprint, storage_key, size, source_path, mode
FROM versions
ORDER BY rowid`

	upsertFile = `
INSERT INTO files (name, next_seq, created_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET next_seq = MAX(files.next_seq, excluded.next_seq)`

	insertVersion = `
INSERT INTO versions (id, file_name, version_id, created_at, fingerprint, storage_key, size, source_path, mode)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	deleteVersion = `DELETE FROM versions WHERE file_name = ? AND version_id = ?`

	insertOperation = `
INSERT INTO operations (started_at, operation, parameters, status)
VALUES (?, ?, ?, 'running')`

	finishOperation = `UPDATE operations SET finished_at = ?, status = ? WHERE id = ?`

	selectOperations = `
SELECT id, started_at, finished_at, operation, parameters, status
FROM operations
ORDER BY id DESC
LIMIT ?`

	selectMaxOperationID = `SELECT COALESCE(MAX(id), 0) FROM operations`
)
