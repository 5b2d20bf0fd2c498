/*
 * Copyright (c) 2022-2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FileStoreVersion is the version of the store as recorded on disk.
const FileStoreVersion = 1

// SnapshotInterval is how many appends the write-ahead log collects before
// the store folds it into a snapshot.
const SnapshotInterval = 1000

// ErrStoreLocked is returned when another process holds the store lock for
// longer than LockTimeout.
var ErrStoreLocked = errors.New("store is locked by another process")

// LockTimeout bounds how long an operation waits for the store lock.
var LockTimeout = 10 * time.Second

// FileStore keeps every record in memory, sorted by time, and persists them as
// a compressed snapshot plus a write-ahead log of appends since the snapshot.
//
// Several processes may open the same directory. Every operation takes the
// LOCK file (shared for reads, exclusive for writes) and first catches up
// with what other processes wrote: a new snapshot is reloaded, and log
// entries past the last read offset are replayed.
type FileStore struct {
	Version uint32
	Path    string
	STime   time.Time // Last snapshot time

	records   []Record
	seen      map[string]struct{}
	walOffset int64 // bytes of the write-ahead log already applied
	pending   int   // log entries since the snapshot

	lock  sync.Mutex
	flock *flock.Flock
	wal   WriteAheadLog
	log   zerolog.Logger
}

// NewFileStore opens the store in directory location, creating it if needed.
func NewFileStore(location string, log zerolog.Logger) (*FileStore, error) {
	if location == "" {
		location = "./data"
	}
	location = filepath.Clean(location)

	fileinfo, err := os.Stat(location)
	if os.IsNotExist(err) {
		err := os.MkdirAll(location, 0700)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else if !fileinfo.IsDir() {
		return nil, fmt.Errorf("supplied path is not a directory")
	}

	s := &FileStore{
		Version: FileStoreVersion,
		Path:    location,
		seen:    map[string]struct{}{},
		flock:   flock.New(filepath.Join(location, "LOCK")),
		wal:     WriteAheadLog{filepath.Join(location, "wal.log")},
		log:     log.With().Str("store", "file").Str("path", location).Logger(),
	}

	err = s.exclusive(func() error {
		if s.pending > SnapshotInterval {
			return s.serializeInternal()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Int("events", len(s.records)).Msg("opened store")
	return s, nil
}

func (s *FileStore) Append(_ context.Context, r Record) error {
	return s.exclusive(func() error {
		if s.pending >= SnapshotInterval {
			err := s.serializeInternal()
			if err != nil {
				s.log.Error().Err(err).Msg("error writing snapshot, continuing on the write-ahead log")
			}
		}

		n, err := s.wal.AddRecord(&r)
		if err != nil {
			return errors.Wrap(err, "unable to append to write-ahead log")
		}
		s.walOffset += n
		s.pending++
		s.apply(r)

		return nil
	})
}

func (s *FileStore) List(_ context.Context, limit int) ([]Record, error) {
	var out []Record
	err := s.shared(func() error {
		src := newest(s.records, limit)
		out = make([]Record, len(src))
		copy(out, src)
		return nil
	})
	return out, err
}

func (s *FileStore) Stats(_ context.Context) (Stats, error) {
	var stats Stats
	err := s.shared(func() error {
		stats = Stats{
			Backend:       "file",
			Events:        len(s.records),
			SerializeTime: s.STime,
			SizeBytes:     uint64(s.wal.Size()),
		}
		if info, err := os.Stat(filepath.Join(s.Path, "events")); err == nil {
			stats.SizeBytes += uint64(info.Size())
		}
		if len(s.records) > 0 {
			stats.LastEvent = s.records[len(s.records)-1].Time
		}
		return nil
	})
	return stats, err
}

// Close folds any pending appends into a snapshot.
func (s *FileStore) Close() error {
	return s.exclusive(func() error {
		if s.pending == 0 {
			return nil
		}
		return s.serializeInternal()
	})
}

func (s *FileStore) exclusive(f func() error) error {
	return s.locked(s.flock.TryLockContext, f)
}

func (s *FileStore) shared(f func() error) error {
	return s.locked(s.flock.TryRLockContext, f)
}

// locked runs f holding both the in-process mutex and the LOCK file, after
// catching up with the files on disk.
func (s *FileStore) locked(acquire func(context.Context, time.Duration) (bool, error), f func() error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	ok, err := acquire(ctx, 10*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, "unable to lock store")
	}
	if !ok {
		return errors.Wrapf(ErrStoreLocked, "%s", s.Path)
	}
	defer s.flock.Unlock()

	if err := s.syncInternal(); err != nil {
		return err
	}
	return f()
}

// syncInternal brings the in-memory index up to date with the directory.
// Callers hold the LOCK file.
func (s *FileStore) syncInternal() error {
	stime, err := s.readMetadata()
	if err != nil {
		return errors.Wrap(err, "unable to read snapshot metadata")
	}

	if !stime.Equal(s.STime) || s.wal.Size() < s.walOffset {
		s.records = nil
		s.seen = map[string]struct{}{}
		s.walOffset = 0
		s.pending = 0
		s.STime = stime

		if !stime.IsZero() {
			err = s.deserializeInternal()
			if err != nil {
				return errors.Wrap(err, "unable to read snapshot")
			}
		}
	}

	s.walOffset, err = s.wal.Replay(s.walOffset, func(r Record) {
		s.pending++
		s.apply(r)
	})
	return err
}

// apply inserts r into the index. A crash between writing a snapshot and
// truncating the log leaves records in both places, so known IDs are skipped.
func (s *FileStore) apply(r Record) {
	if _, dup := s.seen[r.ID]; dup {
		return
	}
	s.seen[r.ID] = struct{}{}
	s.records = insertSorted(s.records, r)
}

// readMetadata returns the time of the snapshot on disk, zero if there is
// none yet.
func (s *FileStore) readMetadata() (time.Time, error) {
	file, err := os.Open(filepath.Join(s.Path, "metadata"))
	if os.IsNotExist(err) {
		return time.Time{}, nil
	} else if err != nil {
		return time.Time{}, err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var version uint32
	err = binary.Read(r, binary.LittleEndian, &version)
	if err != nil {
		return time.Time{}, err
	}
	if version > FileStoreVersion {
		return time.Time{}, fmt.Errorf("cannot read store, on-disk version (%d) is greater than our version (%d)", version, FileStoreVersion)
	}
	s.Version = version

	timeBytes, err := io.ReadAll(r)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, string(timeBytes))
}

// deserializeInternal reads the snapshot records from disk. It expects the
// Path field to be filled in.
func (s *FileStore) deserializeInternal() error {
	file, err := os.Open(filepath.Join(s.Path, "events"))
	if err != nil {
		return err
	}
	defer file.Close()

	reader, err := zlib.NewReader(file)
	if err != nil {
		return err
	}
	defer reader.Close()

	dec := gob.NewDecoder(reader)
	var records []Record
	err = dec.Decode(&records)
	if err != nil {
		return err
	}
	for _, r := range records {
		s.apply(r)
	}

	return nil
}

func (s *FileStore) serializeInternal() error {
	newSTime := time.Now()

	// Write out the events first, metadata is only replaced once they are
	// safely on disk
	var encoded bytes.Buffer
	w := zlib.NewWriter(&encoded)
	enc := gob.NewEncoder(w)
	err := enc.Encode(s.records)
	if err != nil {
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}

	err = writeFileAtomic(filepath.Join(s.Path, "events"), encoded.Bytes())
	if err != nil {
		return err
	}

	metadata := bytes.NewBuffer(binary.LittleEndian.AppendUint32([]byte{}, s.Version))
	_, err = metadata.Write([]byte(newSTime.Format(time.RFC3339Nano)))
	if err != nil {
		return err
	}

	err = writeFileAtomic(filepath.Join(s.Path, "metadata"), metadata.Bytes())
	if err != nil {
		return err
	}

	// Finally, zero out the write-ahead log
	err = s.wal.Truncate()
	if err != nil {
		return err
	}

	s.STime = newSTime
	s.walOffset = 0
	s.pending = 0
	s.log.Debug().Int("events", len(s.records)).Msg("wrote snapshot")

	return nil
}

func writeFileAtomic(path string, contents []byte) error {
	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write(contents)
	if err != nil {
		return err
	}
	err = file.Sync()
	if err != nil {
		return err
	}
	file.Close()

	return os.Rename(tmpPath, path)
}
