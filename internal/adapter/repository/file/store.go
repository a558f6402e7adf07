// Package file stores one YAML document per user under a data directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iho/gofinance/internal/adapter/repository/snapshot"
	"github.com/iho/gofinance/internal/domain"
)

const extension = ".yaml"

// Store implements usecase.SnapshotStore on the local filesystem.
type Store struct {
	dir string
}

// NewStore creates the data directory if needed and returns a Store rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the snapshot for login.
func (s *Store) Load(ctx context.Context, login string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(login))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	rec, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", login, err)
	}

	return rec.ToSnapshot()
}

// Save writes the snapshot, replacing any previous file for the same login.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(snapshot.FromSnapshot(snap))
	if err != nil {
		return fmt.Errorf("encode %s: %w", snap.Login, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path(snap.Login))
}

// ListCredentials decodes every snapshot file in the directory.
func (s *Store) ListCredentials(ctx context.Context) ([]domain.Credential, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var creds []domain.Credential
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), extension) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}

		rec, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Name(), err)
		}

		creds = append(creds, domain.Credential{Login: rec.Login, SecretHash: rec.SecretHash})
	}

	sort.Slice(creds, func(i, j int) bool { return creds[i].Login < creds[j].Login })

	return creds, nil
}

func (s *Store) path(login string) string {
	return filepath.Join(s.dir, url.PathEscape(login)+extension)
}

func decode(data []byte) (snapshot.Record, error) {
	var rec snapshot.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return snapshot.Record{}, err
	}
	if rec.Login == "" {
		return snapshot.Record{}, fmt.Errorf("%w: snapshot without login", domain.ErrValidation)
	}
	return rec, nil
}
