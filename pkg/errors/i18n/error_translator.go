package i18n

import (
	"embed" // mesaj tabloları binary'e gömülür
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed *.json
var i18nFiles embed.FS

var (
	mu       sync.RWMutex
	messages map[string]string
)

func Load(locale string) error {
	filename := locale + ".json"

	data, err := i18nFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read embedded i18n file %s: %w", filename, err)
	}

	table := make(map[string]string)
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to decode i18n file %s: %w", filename, err)
	}

	mu.Lock()
	messages = table
	mu.Unlock()
	return nil
}

func T(code string) string {
	return TOr(code, code)
}

// TOr returns the localized message for code, or fallback when the active
// table has no entry.
func TOr(code, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fallback
}
