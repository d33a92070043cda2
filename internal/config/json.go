package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mediauploader/internal/flagx"
	"github.com/dmitrijs2005/mediauploader/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "72h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	ParentPrefix      string         `json:"parent_prefix"`
	DownloadRoot      string         `json:"download_root"`
	LostRoot          string         `json:"lost_root"`
	LookupWindow      timex.Duration `json:"lookup_window"`
	StalenessWarn     timex.Duration `json:"staleness_warn"`
	DeviceFolders     []string       `json:"device_folders"`
	DriveRootFormat   string         `json:"drive_root_format"`
	FirstDeviceLetter string         `json:"first_device_letter"`
	OrganizationID    int64          `json:"organization_id"`
	CatalogBaseURL    string         `json:"catalog_base_url"`
	CatalogSecret     string         `json:"catalog_secret"`
	MaxTries          int            `json:"max_tries"`
	HistoryDSN        string         `json:"history_dsn"`
	PollInterval      timex.Duration `json:"poll_interval"`
	DeleteAfterUpload bool           `json:"delete_after_upload"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.ParentPrefix = c.ParentPrefix
	config.DownloadRoot = c.DownloadRoot
	config.LostRoot = c.LostRoot
	config.LookupWindow = time.Duration(c.LookupWindow.Duration)
	config.StalenessWarn = time.Duration(c.StalenessWarn.Duration)
	config.DeviceFolders = c.DeviceFolders
	config.DriveRootFormat = c.DriveRootFormat
	config.FirstDeviceLetter = c.FirstDeviceLetter
	config.OrganizationID = c.OrganizationID
	config.CatalogBaseURL = c.CatalogBaseURL
	config.CatalogSecret = c.CatalogSecret
	config.MaxTries = c.MaxTries
	config.HistoryDSN = c.HistoryDSN
	config.PollInterval = time.Duration(c.PollInterval.Duration)
	config.DeleteAfterUpload = c.DeleteAfterUpload
}
