package main

import (
	"errors"
	"fmt"

	"fv-go/internal/app"
	"fv-go/internal/encryption"
	"fv-go/internal/fv"
	"fv-go/internal/staging"
)

// describeError turns an error into the line shown to the user.
// Known failures get a fixed message; anything else is shown as is.
func describeError(err error) string {
	switch {
	case errors.Is(err, fv.ErrSourceNotFound):
		return "File does not exist."
	case errors.Is(err, fv.ErrNoChange):
		return "No changes detected. Backup not needed."
	case errors.Is(err, fv.ErrHistoryNotFound):
		return "No versions found for this file."
	case errors.Is(err, fv.ErrVersionNotFound):
		return "Version not found."
	case errors.Is(err, fv.ErrOrphanedRecord):
		return "Version is recorded but its backup data is missing."
	case errors.Is(err, fv.ErrIgnored):
		return "File matches an ignore pattern. Backup skipped."
	case errors.Is(err, staging.ErrTooLarge):
		return "File is too large to back up."
	case errors.Is(err, staging.ErrChangedDuringCapture):
		return "File changed while it was being read. Try again."
	case errors.Is(err, encryption.ErrWrongPassphrase):
		return "Wrong passphrase."
	case errors.Is(err, app.ErrNoOperationLog):
		return "Operation history is only kept with a sqlite index."
	case errors.Is(err, fv.ErrStorageIO):
		return fmt.Sprintf("Storage error: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
