package config

import (
	"fmt"
	"os"
)

func Template() string {
	return wirectlTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(wirectlTemplate), 0o600)
}

const wirectlTemplate = `[codec]
# Largest envelope payload accepted or produced.
max_payload_bytes = 65536
max_string_bytes = 16384
max_blob_bytes = 1048576
max_collection_count = 10000
# Panic on encode-side contract violations instead of returning an error.
strict_invariants = false

[inspect]
addr = "127.0.0.1:9300"
cors_origins = ["http://localhost:3000"]
`
