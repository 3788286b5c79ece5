package storage

import "fmt"

// Options selects and configures the active disk. Populated from config
// at boot and passed in; this package never reads configuration itself.
type Options struct {
	Driver     string // "local" (default) or "s3"
	LocalRoot  string
	LocalURL   string
	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string // leave empty for real AWS
	S3URL      string
}

// Open builds the Disk selected by opts.Driver.
func Open(opts Options) (Disk, error) {
	switch opts.Driver {
	case "", "local":
		return newLocalDisk(opts.LocalRoot, opts.LocalURL), nil
	case "s3":
		return newS3Disk(opts)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q (supported: local, s3)", opts.Driver)
	}
}
