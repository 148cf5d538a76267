package volume

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/archivekit/diskutils/sparse"
)

const (
	sectorSize = 512

	gptHeaderSignature = "EFI PART"
	gptHeaderLBA       = 1
	gptDiskGUIDOffset  = 56 // offset of DiskGUID within the GPT header

	mbrBootSignatureOffset   = 0x1FE
	mbrBootSignature         = 0xAA55 // bytes 0x55, 0xAA read as a little-endian uint16
	mbrUniqueSignatureOffset = 0x1B8
)

// diskIdentity computes the stable identity string for disk per the
// three-tier rule: GPT disk GUID, else MBR signature, else the
// insertion ordinal. It reads only the first two sectors of disk's own
// stream; it never parses partitions (that's the external
// PartitionTable collaborator's job).
func diskIdentity(disk Disk) (string, error) {
	stream := sparse.NewBuffered(disk.Stream(), 2*sectorSize, sparse.OwnershipNone)

	if id, ok, err := gptIdentity(stream); err != nil {
		return "", err
	} else if ok {
		return id, nil
	}

	if id, ok, err := mbrIdentity(stream); err != nil {
		return "", err
	} else if ok {
		return id, nil
	}

	return fmt.Sprintf("DO%d", disk.Ordinal()), nil
}

func gptIdentity(stream sparse.Stream) (string, bool, error) {
	header := make([]byte, sectorSize)
	if _, err := stream.Seek(gptHeaderLBA*sectorSize, io.SeekStart); err != nil {
		return "", false, err
	}
	if _, err := io.ReadFull(stream, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", false, nil
		}
		return "", false, err
	}
	if string(header[:8]) != gptHeaderSignature {
		return "", false, nil
	}
	guidBytes := header[gptDiskGUIDOffset : gptDiskGUIDOffset+16]
	id, err := uuid.FromBytes(mixedEndianToRFC4122(guidBytes))
	if err != nil {
		return "", false, nil
	}
	if id == uuid.Nil {
		return "", false, nil
	}
	return fmt.Sprintf("DG{%s}", id.String()), true, nil
}

// mixedEndianToRFC4122 reorders a Microsoft-style "mixed-endian" GUID
// (as GPT stores DiskGUID: first three fields little-endian, last two
// big-endian) into the big-endian byte layout uuid.FromBytes expects.
func mixedEndianToRFC4122(guid []byte) []byte {
	out := make([]byte, 16)
	out[0], out[1], out[2], out[3] = guid[3], guid[2], guid[1], guid[0]
	out[4], out[5] = guid[5], guid[4]
	out[6], out[7] = guid[7], guid[6]
	copy(out[8:], guid[8:16])
	return out
}

func mbrIdentity(stream sparse.Stream) (string, bool, error) {
	sector := make([]byte, sectorSize)
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}
	if _, err := io.ReadFull(stream, sector); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", false, nil
		}
		return "", false, err
	}
	if binary.LittleEndian.Uint16(sector[mbrBootSignatureOffset:]) != mbrBootSignature {
		return "", false, nil
	}
	signature := binary.LittleEndian.Uint32(sector[mbrUniqueSignatureOffset:])
	if signature == 0 {
		return "", false, nil
	}
	return fmt.Sprintf("DS%08X", signature), true, nil
}
