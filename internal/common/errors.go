// Package common defines shared sentinel errors used across the uploader
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// upload specific errors
	ErrorFileMissing = errors.New("local file missing")
	ErrorCancelled   = errors.New("cancelled")

	// router specific outcomes, benign but reportable
	ErrorNoSourceFolder = errors.New("no source folder on device")
	ErrorNoFiles        = errors.New("source folder contains no files")

	// event catalog errors
	ErrorCatalogStatus = errors.New("event catalog returned unexpected status")
)
