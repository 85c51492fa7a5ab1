package fileio

import (
	"hash/crc32"
	"io"
)

// FillerChecksumCRC32 returns CRC32 checksum of size bytes of filler
func FillerChecksumCRC32(size uint64) uint32 {
	hash := crc32.New(crc32.IEEETable)
	NewFiller(size).WriteTo(hash)
	return hash.Sum32()
}

// ChecksumWriter counts and checksums everything written to it
type ChecksumWriter struct {
	crc32Hash uint32
	written   uint64
}

func (c *ChecksumWriter) Write(p []byte) (int, error) {
	c.crc32Hash = progressiveChecksumCRC32(c.crc32Hash, p)
	c.written += uint64(len(p))
	return len(p), nil
}

// Sum32 returns CRC32 checksum of all data written so far
func (c *ChecksumWriter) Sum32() uint32 {
	return c.crc32Hash
}

// Written returns number of bytes written so far
func (c *ChecksumWriter) Written() uint64 {
	return c.written
}

// progressiveChecksumCRC32 incrementally calculates CRC32 checksum
func progressiveChecksumCRC32(hash uint32, data []byte) uint32 {
	return crc32.Update(hash, crc32.IEEETable, data)
}

var _ io.Writer = (*ChecksumWriter)(nil)
