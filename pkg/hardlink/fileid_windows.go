// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build windows

package hardlink

import (
	"fmt"
	"os"
	"syscall"
)

// fileReadAttributes is the Windows access right for reading file attributes.
// Required for GetFileInformationByHandle to work across filesystem types.
const fileReadAttributes = 0x0080

// FileID uniquely identifies a physical file on disk.
// On Windows this is the (VolumeSerialNumber, FileIndexHigh, FileIndexLow)
// tuple, the NTFS analogue of the Unix (device, inode) pair.
// The type is comparable and usable as a map key without allocations.
type FileID struct {
	VolumeSerialNumber uint32
	FileIndexHigh      uint32
	FileIndexLow       uint32
}

// IsZero returns true if the FileID is the zero value (uninitialized).
func (f FileID) IsZero() bool {
	return f.VolumeSerialNumber == 0 && f.FileIndexHigh == 0 && f.FileIndexLow == 0
}

// String renders the identity as "volume:indexHigh:indexLow" for logs and JSON output.
func (f FileID) String() string {
	return fmt.Sprintf("%d:%d:%d", f.VolumeSerialNumber, f.FileIndexHigh, f.FileIndexLow)
}

// Less orders FileIDs by volume, then file index.
func (f FileID) Less(other FileID) bool {
	if f.VolumeSerialNumber != other.VolumeSerialNumber {
		return f.VolumeSerialNumber < other.VolumeSerialNumber
	}
	if f.FileIndexHigh != other.FileIndexHigh {
		return f.FileIndexHigh < other.FileIndexHigh
	}
	return f.FileIndexLow < other.FileIndexLow
}

// SameDevice reports whether two identities live on the same volume.
func SameDevice(a, b FileID) bool {
	return a.VolumeSerialNumber == b.VolumeSerialNumber
}

// GetFileID returns the FileID and hardlink count for a stat'ed file.
func GetFileID(fi os.FileInfo, path string) (FileID, uint64, error) {
	pathp, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return FileID{}, 0, err
	}
	attrs := uint32(syscall.FILE_FLAG_BACKUP_SEMANTICS)
	if fi.Mode()&os.ModeSymlink != 0 {
		attrs |= syscall.FILE_FLAG_OPEN_REPARSE_POINT
	}
	// Full sharing mode so files open in another process still stat.
	shareMode := uint32(syscall.FILE_SHARE_READ | syscall.FILE_SHARE_WRITE | syscall.FILE_SHARE_DELETE)
	h, err := syscall.CreateFile(pathp, fileReadAttributes, shareMode, nil, syscall.OPEN_EXISTING, attrs, 0)
	if err != nil {
		return FileID{}, 0, err
	}
	defer syscall.CloseHandle(h)

	var info syscall.ByHandleFileInformation
	if err := syscall.GetFileInformationByHandle(h, &info); err != nil {
		return FileID{}, 0, err
	}

	return FileID{
		VolumeSerialNumber: info.VolumeSerialNumber,
		FileIndexHigh:      info.FileIndexHigh,
		FileIndexLow:       info.FileIndexLow,
	}, uint64(info.NumberOfLinks), nil
}
