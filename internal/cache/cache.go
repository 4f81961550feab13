// Package cache keeps fetched pages and model responses on disk so repeated
// extractions of the same company are cheap and reproducible.
package cache

import (
	"errors"
	"os"
	"path/filepath"
)

// Layout names the per-kind subdirectories below a cache root.
const (
	HTTPSubdir = "http"
	LLMSubdir  = "llm"
)

// Open returns HTTP and LLM caches rooted under dir.
func Open(dir string, strictPerms bool) (*HTTPCache, *LLMCache) {
	return &HTTPCache{Dir: filepath.Join(dir, HTTPSubdir), StrictPerms: strictPerms},
		&LLMCache{Dir: filepath.Join(dir, LLMSubdir), StrictPerms: strictPerms}
}

func dirMode(strict bool) os.FileMode {
	if strict {
		return 0o700
	}
	return 0o755
}

func fileMode(strict bool) os.FileMode {
	if strict {
		return 0o600
	}
	return 0o644
}

func ensureDir(dir string, strict bool) error {
	if dir == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.MkdirAll(dir, dirMode(strict)); err != nil {
		return err
	}
	// MkdirAll leaves an existing directory alone; tighten it if asked.
	if strict {
		if info, err := os.Stat(dir); err == nil && info.Mode().Perm() != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}

// writeAtomic writes via a uniquely named temp file and rename so readers
// never see a partial entry and concurrent writers of one path do not collide.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp, mode)
	}
	if werr == nil {
		werr = os.Rename(tmp, path)
	}
	if werr != nil {
		_ = os.Remove(tmp)
	}
	return werr
}
