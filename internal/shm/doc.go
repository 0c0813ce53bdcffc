// Package shm maps named shared-memory segments published by another process
// and copies read-only snapshots out of them.
//
// The producer owns every write. Nothing here locks or validates the bytes:
// a snapshot may straddle an in-progress write and is still returned whole.
//
// On Windows a segment is a named file mapping opened with OpenFileMappingW.
// Everywhere else it is a file under a directory (normally /dev/shm, which is
// where Wine exposes named sections) mapped with mmap.
package shm
