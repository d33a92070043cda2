package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediauploader/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-u string   S3 access key
//	-p string   S3 secret key
//	-f string   parent key prefix for per-batch folders
//	-d string   local download root
//	-l string   local lost root
//	-w int      event lookup window, hours
//	-v string   device folders, comma-separated
//	-o int      organization id
//	-a string   event catalog base URL
//	-s string   event catalog secret key
//	-t int      per-file upload attempt budget
//	-n string   batch history SQLite DSN
//	-i int      device poll interval, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-g", "-e", "-u", "-p", "-f", "-d", "-l", "-w", "-v", "-o", "-a", "-s", "-t", "-n", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.ParentPrefix, "f", config.ParentPrefix, "parent key prefix for batch folders")
	fs.StringVar(&config.DownloadRoot, "d", config.DownloadRoot, "local download root")
	fs.StringVar(&config.LostRoot, "l", config.LostRoot, "local lost root")

	lookupWindow := fs.Int("w", int(config.LookupWindow.Hours()), "event lookup window (in hours)")
	deviceFolders := fs.String("v", strings.Join(config.DeviceFolders, ","), "device folders, comma-separated")

	fs.Int64Var(&config.OrganizationID, "o", config.OrganizationID, "organization id")
	fs.StringVar(&config.CatalogBaseURL, "a", config.CatalogBaseURL, "event catalog base URL")
	fs.StringVar(&config.CatalogSecret, "s", config.CatalogSecret, "event catalog secret key")
	fs.IntVar(&config.MaxTries, "t", config.MaxTries, "per-file upload attempt budget")
	fs.StringVar(&config.HistoryDSN, "n", config.HistoryDSN, "batch history SQLite DSN")

	pollInterval := fs.Int("i", int(config.PollInterval.Seconds()), "device poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LookupWindow = time.Duration(*lookupWindow) * time.Hour
	config.PollInterval = time.Duration(*pollInterval) * time.Second

	folders := make([]string, 0, len(config.DeviceFolders))
	for _, f := range strings.Split(*deviceFolders, ",") {
		if f = strings.TrimSpace(f); f != "" {
			folders = append(folders, f)
		}
	}
	config.DeviceFolders = folders
}
