package trayicon

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	iconDirSize   = 6
	iconEntrySize = 16
)

// validateICO checks that data is an .ico file whose images all lie inside it.
func validateICO(data []byte) error {
	if len(data) < iconDirSize {
		return errors.New("icon data too short")
	}
	if binary.LittleEndian.Uint16(data[0:]) != 0 || binary.LittleEndian.Uint16(data[2:]) != 1 {
		return errors.New("not an .ico file")
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))
	if count == 0 {
		return errors.New("icon has no images")
	}
	if len(data) < iconDirSize+count*iconEntrySize {
		return errors.New("icon directory truncated")
	}
	for i := 0; i < count; i++ {
		entry := data[iconDirSize+i*iconEntrySize:]
		size := int64(binary.LittleEndian.Uint32(entry[8:]))
		offset := int64(binary.LittleEndian.Uint32(entry[12:]))
		if size == 0 || offset+size > int64(len(data)) {
			return fmt.Errorf("icon image %d out of bounds", i)
		}
	}
	return nil
}
