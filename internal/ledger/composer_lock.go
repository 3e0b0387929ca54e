package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lemberg/draftenv/internal/composer"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/fileio"
)

// ExtraKey is the key under the package record's "extra" object.
const ExtraKey = "draft-environment"

// LockSuffix is appended to the lock file path to name the flock file.
const LockSuffix = ".draftenv.lock"

// ComposerLockStore keeps the entry inside composer.lock, under
// extra["draft-environment"] of the package record. Other bytes of the
// file are left as they are.
type ComposerLockStore struct {
	path   string
	pkg    string
	fsys   fileio.FS
	lock   *flock.Flock
	retry  draftErrors.RetryConfig
	logger *slog.Logger
}

// NewComposerLockStore creates a store for package pkg in the lock file at
// path.
func NewComposerLockStore(path, pkg string, fsys fileio.FS, logger *slog.Logger) *ComposerLockStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComposerLockStore{
		path:   path,
		pkg:    pkg,
		fsys:   fsys,
		lock:   flock.New(path + LockSuffix),
		retry:  draftErrors.DefaultRetryConfig(),
		logger: logger,
	}
}

// Path returns the lock file path.
func (s *ComposerLockStore) Path() string {
	return s.path
}

func (s *ComposerLockStore) Load(ctx context.Context) (Entry, bool, error) {
	data, recordPath, err := s.read()
	if err != nil || recordPath == "" {
		return Entry{}, false, err
	}

	return entryAt(data, recordPath), true, nil
}

// Save replaces the entry.
func (s *ComposerLockStore) Save(ctx context.Context, e Entry) error {
	return s.Update(ctx, func(cur *Entry) bool {
		*cur = e
		return true
	})
}

// Update reads, mutates and writes the entry while holding the flock.
func (s *ComposerLockStore) Update(ctx context.Context, mutate func(e *Entry) bool) error {
	if !s.fsys.Exists(s.path) {
		return ErrRecordNotFound
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release ledger lock", slog.String("error", err.Error()))
		}
	}()

	// Read under the lock, the host tool may have rewritten the file.
	data, recordPath, err := s.read()
	if err != nil {
		return err
	}
	if recordPath == "" {
		return ErrRecordNotFound
	}

	e := entryAt(data, recordPath)
	if !mutate(&e) {
		return nil
	}

	if extra := gjson.GetBytes(data, recordPath+".extra"); extra.Exists() && !extra.IsObject() {
		// An empty PHP array is serialized as [].
		if data, err = sjson.SetRawBytes(data, recordPath+".extra", []byte("{}")); err != nil {
			return draftErrors.InternalError("failed to reset package extra", err)
		}
	}

	base := composer.ExtraPath(recordPath, ExtraKey)
	if data, err = sjson.SetBytes(data, base+".already-installed", e.AlreadyInstalled); err != nil {
		return draftErrors.InternalError("failed to update ledger", err)
	}
	if data, err = sjson.SetBytes(data, base+".last-update-weight", e.LastAppliedWeight); err != nil {
		return draftErrors.InternalError("failed to update ledger", err)
	}

	if err := s.fsys.WriteFile(s.path, data, 0o644); err != nil {
		return draftErrors.IOError(fmt.Sprintf("failed to write %s", s.path), err).WithDetail("file", s.path)
	}
	s.logger.Debug("ledger saved",
		slog.String("file", s.path),
		slog.Bool("already_installed", e.AlreadyInstalled),
		slog.Int("last_update_weight", e.LastAppliedWeight))
	return nil
}

func entryAt(data []byte, recordPath string) Entry {
	extra := gjson.GetBytes(data, composer.ExtraPath(recordPath, ExtraKey))
	return Entry{
		AlreadyInstalled:  extra.Get("already-installed").Bool(),
		LastAppliedWeight: int(extra.Get("last-update-weight").Int()),
	}
}

// read returns the lock file and the path of the package record, or an
// empty record path when the file or the record is missing.
func (s *ComposerLockStore) read() ([]byte, string, error) {
	data, err := s.fsys.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", draftErrors.IOError(fmt.Sprintf("failed to read %s", s.path), err).WithDetail("file", s.path)
	}
	if !gjson.ValidBytes(data) {
		return nil, "", draftErrors.ParseError(fmt.Sprintf("%s is not valid JSON", s.path), nil).WithDetail("file", s.path)
	}
	recordPath, _ := composer.FindPackage(data, s.pkg)
	return data, recordPath, nil
}

func (s *ComposerLockStore) acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return draftErrors.IOError("failed to create lock directory", err)
	}
	return draftErrors.Retry(ctx, s.retry, func() error {
		acquired, err := s.lock.TryLock()
		if err != nil {
			return draftErrors.IOError("failed to acquire ledger lock", err)
		}
		if !acquired {
			return draftErrors.New(draftErrors.ErrCodeLockBusy,
				fmt.Sprintf("%s is locked by another process", s.path+LockSuffix), nil)
		}
		return nil
	})
}
