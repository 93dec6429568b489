package gcp

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// ObjectStorageConfig selects where archived import payloads go. An empty
// Bucket disables archiving and skips validation of the rest.
type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	EmulatorHost string
	// CompatibilityFallback is set when the emulator was picked only because
	// STORAGE_EMULATOR_HOST was present.
	CompatibilityFallback bool

	Bucket string
	Prefix string
}

func (cfg ObjectStorageConfig) Enabled() bool        { return strings.TrimSpace(cfg.Bucket) != "" }
func (cfg ObjectStorageConfig) IsEmulatorMode() bool { return cfg.Mode == ObjectStorageModeGCSEmulator }

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
)

type ObjectStorageConfigError struct {
	Code         ObjectStorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ObjectStorageConfigError) Error() string {
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("import archive: OBJECT_STORAGE_MODE=%q is not one of %q, %q",
			e.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return "import archive: emulator mode needs STORAGE_EMULATOR_HOST"
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("import archive: STORAGE_EMULATOR_HOST=%q is not an absolute URL (e.g. http://fake-gcs:4443)", e.EmulatorHost)
	}
	return "import archive: invalid object storage config"
}

func (e *ObjectStorageConfigError) Unwrap() error { return e.Cause }

// ResolveObjectStorageConfigFromEnv reads IMPORT_ARCHIVE_BUCKET,
// IMPORT_ARCHIVE_PREFIX, OBJECT_STORAGE_MODE and STORAGE_EMULATOR_HOST.
func ResolveObjectStorageConfigFromEnv() (ObjectStorageConfig, error) {
	cfg := ObjectStorageConfig{
		EmulatorHost: strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")),
		Bucket:       strings.TrimSpace(os.Getenv("IMPORT_ARCHIVE_BUCKET")),
		Prefix:       strings.Trim(strings.TrimSpace(os.Getenv("IMPORT_ARCHIVE_PREFIX")), "/"),
	}
	raw := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE"))
	cfg.Mode = ObjectStorageMode(strings.ToLower(raw))
	if cfg.Mode == "" {
		cfg.Mode = ObjectStorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
			cfg.CompatibilityFallback = true
		}
	}
	if !cfg.Enabled() {
		return cfg, nil
	}
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		if e, ok := err.(*ObjectStorageConfigError); ok && e.Code == ObjectStorageConfigErrorInvalidMode {
			e.Mode = raw
		}
		return cfg, err
	}
	return cfg, nil
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		return nil
	case ObjectStorageModeGCSEmulator:
	default:
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.EmulatorHost == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ObjectStorageConfigError{
			Code:         ObjectStorageConfigErrorInvalidEmulatorHost,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
	}
	return nil
}
