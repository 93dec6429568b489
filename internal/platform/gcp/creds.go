package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// ClientOptionsFromEnv reads service account credentials from
// GCS_CREDENTIALS_FILE, GOOGLE_APPLICATION_CREDENTIALS_JSON or
// GOOGLE_APPLICATION_CREDENTIALS. A value starting with "{" is inline JSON.
// No credentials means application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := ""
	for _, key := range []string{"GCS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			creds = v
			break
		}
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
