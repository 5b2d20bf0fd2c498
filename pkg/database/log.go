/*
 * Copyright (c) 2022, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	actionAddEvent = 1 << iota
)

// WriteAheadLog is a line oriented journal of "<action>;<base64 gob>" entries.
// Every append lands here before it is visible in memory, and the log is
// replayed on top of the last snapshot when a store is opened.
type WriteAheadLog struct {
	LogPath string
}

// Replay feeds every complete entry after byte offset to apply, in log
// order, and returns the offset just past the last entry it read. A missing
// log replays nothing.
func (w *WriteAheadLog) Replay(offset int64, apply func(Record)) (int64, error) {
	file, err := os.Open(w.LogPath)
	if os.IsNotExist(err) {
		return 0, nil
	} else if err != nil {
		return offset, errors.Wrap(err, "unable to open write-ahead log")
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, errors.Wrap(err, "unable to seek write-ahead log")
	}

	reader := bufio.NewReader(file)
	for {
		text, err := reader.ReadString('\n')
		if err == io.EOF {
			// an unterminated tail is an append still in flight
			return offset, nil
		} else if err != nil {
			return offset, err
		}
		entryOffset := offset
		offset += int64(len(text))

		text = strings.TrimSuffix(text, "\n")
		if text == "" {
			continue
		}

		action := strings.SplitN(text, ";", 2)
		if len(action) != 2 {
			return entryOffset, errors.Errorf("malformed write-ahead log entry at offset %d", entryOffset)
		}
		actionType, err := strconv.Atoi(action[0])
		if err != nil {
			return entryOffset, errors.Wrapf(err, "bad action at offset %d", entryOffset)
		}
		valueBytes, err := base64.StdEncoding.DecodeString(action[1])
		if err != nil {
			return entryOffset, errors.Wrapf(err, "bad payload at offset %d", entryOffset)
		}
		dec := gob.NewDecoder(bytes.NewBuffer(valueBytes))

		switch actionType {
		case actionAddEvent:
			var r Record
			err := dec.Decode(&r)
			if err != nil {
				return entryOffset, errors.Wrapf(err, "unable to decode record at offset %d", entryOffset)
			}
			apply(r)
		default:
			return entryOffset, errors.Errorf("unknown action %d at offset %d", actionType, entryOffset)
		}
	}
}

// AddRecord appends r to the log, syncs it to disk and returns the number of
// bytes written.
func (w *WriteAheadLog) AddRecord(r *Record) (int64, error) {
	var encoded bytes.Buffer

	enc := gob.NewEncoder(&encoded)
	err := enc.Encode(r)
	if err != nil {
		return 0, errors.Wrap(err, "encode")
	}

	file, err := os.OpenFile(w.LogPath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	n, err := file.WriteString(fmt.Sprintf("%d;%s\n", actionAddEvent, base64.StdEncoding.EncodeToString(encoded.Bytes())))
	if err != nil {
		return int64(n), err
	}

	return int64(n), file.Sync()
}

// Truncate empties the log once its contents are captured in a snapshot.
func (w *WriteAheadLog) Truncate() error {
	err := os.Remove(w.LogPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Size reports the on-disk size of the log.
func (w *WriteAheadLog) Size() int64 {
	info, err := os.Stat(w.LogPath)
	if err != nil {
		return 0
	}
	return info.Size()
}
