package cookiejar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
)

var _ output.CookieJar = (*FileJar)(nil)

// FileJar stores cookies as a JSON array on local disk.
type FileJar struct{}

func New() *FileJar {
	return &FileJar{}
}

func (j *FileJar) Read(path string) ([]entity.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	var cookies []entity.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("decode cookie file %s: %w", path, err)
	}
	if cookies == nil {
		cookies = []entity.Cookie{}
	}
	return cookies, nil
}

// Write replaces the file atomically so a crashed write never leaves half a jar.
func (j *FileJar) Write(path string, cookies []entity.Cookie) error {
	if cookies == nil {
		cookies = []entity.Cookie{}
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cookies-*.json")
	if err != nil {
		return fmt.Errorf("create temp cookie file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cookies: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cookie file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cookie file: %w", err)
	}
	return nil
}
