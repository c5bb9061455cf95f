package sessionstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core/session"
)

const diskFileExt = ".json"

// diskStore keeps one file per session in a directory.
type diskStore struct {
	dir string
	now func() time.Time
}

var _ session.Store = (*diskStore)(nil)

// NewDiskStore creates dir if needed and checks that it is writable.
func NewDiskStore(dir string) (*diskStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating sessions directory")
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return nil, errors.Wrap(err, "writing to sessions directory")
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return &diskStore{dir: dir, now: time.Now}, nil
}

func (st *diskStore) Name() string { return "disk" }

func (st *diskStore) path(id string) (string, error) {
	if !session.ValidID(id) {
		return "", session.ErrNotFound
	}
	return filepath.Join(st.dir, id+diskFileExt), nil
}

func (st *diskStore) Load(_ context.Context, id string) (*session.Session, error) {
	fp, err := st.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, session.ErrNotFound
		}
		return nil, errors.Wrap(err, "reading session file")
	}
	s, err := session.Decode(data)
	if err != nil {
		return nil, err
	}
	if s.Expired(st.now()) {
		_ = os.Remove(fp)
		return nil, session.ErrNotFound
	}
	return s, nil
}

// Save writes to a temporary file first so that readers never see a partial record.
func (st *diskStore) Save(_ context.Context, s *session.Session, _ time.Duration) error {
	fp, err := st.path(s.ID())
	if err != nil {
		return err
	}
	data, err := session.Encode(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(st.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating session file")
	}
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "writing session file")
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "closing session file")
	}
	if err = os.Rename(tmp.Name(), fp); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "renaming session file")
	}
	return nil
}

func (st *diskStore) Delete(_ context.Context, id string) error {
	fp, err := st.path(id)
	if err != nil {
		return nil
	}
	if err = os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}

// Cleanup removes expired session files and returns how many were removed.
func (st *diskStore) Cleanup() (int, error) {
	fps, err := filepath.Glob(filepath.Join(st.dir, "*"+diskFileExt))
	if err != nil {
		return 0, err
	}
	var removed int
	now := st.now()
	for _, fp := range fps {
		data, err := os.ReadFile(fp)
		if err != nil {
			continue
		}
		if s, err := session.Decode(data); err != nil || s.Expired(now) {
			if os.Remove(fp) == nil {
				removed++
			}
		}
	}
	return removed, nil
}
