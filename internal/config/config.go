// Package config handles configuration for the uploader,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the media uploader.
//
// Fields:
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - S3AccessKey / S3SecretKey: credentials for the S3-compatible backend.
//   - ParentPrefix: key prefix under which per-batch folders are created.
//   - DownloadRoot: local root for recognized event batches.
//   - LostRoot: local root for batches with no matching event.
//   - LookupWindow: how far back from the anchor time events are matched.
//   - StalenessWarn: anchor ages beyond this produce a device-clock warning.
//   - DeviceFolders: relative paths probed on a device for source material.
//   - DriveRootFormat: printf pattern turning a drive letter into a root path.
//   - FirstDeviceLetter: first drive letter considered during scans.
//   - OrganizationID: organization whose events are matched.
//   - CatalogBaseURL / CatalogSecret: event catalog endpoint and HMAC secret.
//   - MaxTries: per-file upload attempt budget.
//   - HistoryDSN: SQLite DSN for the local batch journal.
//   - PollInterval: device watcher polling period.
//   - DeleteAfterUpload: remove the staged folder after a clean upload.
type Config struct {
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	S3AccessKey       string
	S3SecretKey       string
	ParentPrefix      string
	DownloadRoot      string
	LostRoot          string
	LookupWindow      time.Duration
	StalenessWarn     time.Duration
	DeviceFolders     []string
	DriveRootFormat   string
	FirstDeviceLetter string
	OrganizationID    int64
	CatalogBaseURL    string
	CatalogSecret     string
	MaxTries          int
	HistoryDSN        string
	PollInterval      time.Duration
	DeleteAfterUpload bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.S3Bucket = "media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.ParentPrefix = "uploads/"
	c.DownloadRoot = "download"
	c.LostRoot = "lost"
	c.LookupWindow = 72 * time.Hour
	c.StalenessWarn = 14 * 24 * time.Hour
	c.DeviceFolders = []string{"DCIM", "PRIVATE/AVCHD/BDMV/STREAM"}
	c.DriveRootFormat = "%c:\\"
	c.FirstDeviceLetter = "D"
	c.OrganizationID = 0
	c.CatalogBaseURL = "https://api.timepad.ru"
	c.CatalogSecret = "secretKey"
	c.MaxTries = 10
	c.HistoryDSN = "uploader.db"
	c.PollInterval = 2 * time.Second
	c.DeleteAfterUpload = true
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
