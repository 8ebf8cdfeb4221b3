package fileio

import (
	"hash/crc32"
	"io"
	"os"
)

// GetFileChecksumCRC32 returns CRC32 checksum of given file without moving its read offset
func GetFileChecksumCRC32(file *os.File) ([]byte, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	hash := crc32.New(crc32.IEEETable)
	section := io.NewSectionReader(file, 0, info.Size())
	if _, err := io.CopyBuffer(hash, section, make([]byte, 64*1024)); err != nil {
		return nil, err
	}

	return hash.Sum(nil), nil
}

// progressiveChecksumCRC32 incrementally calculates CRC32 checksum
func progressiveChecksumCRC32(hash uint32, data []byte) uint32 {
	return crc32.Update(hash, crc32.IEEETable, data)
}
