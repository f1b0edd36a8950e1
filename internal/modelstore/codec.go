package modelstore

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"

	"github.com/pricecast/pricecast/internal/analytics/forecast"
)

const (
	modelMagic      uint32 = 0x50434D44 // "PCMD"
	modelVersion    uint32 = 2
	modelHeaderSize        = 12 // magic, version, crc32 of payload
)

var (
	// ErrCorruptModel is returned when a blob cannot be decoded into a usable model
	ErrCorruptModel = errors.New("corrupt model")
	// ErrOutdatedModel is returned for a well-formed blob written by an older format
	ErrOutdatedModel = errors.New("outdated model format")
)

// Encode serializes a model as a header followed by snappy-compressed JSON
func Encode(model *forecast.ProphetModel) ([]byte, error) {
	raw, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	payload := snappy.Encode(nil, raw)

	blob := make([]byte, modelHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(blob[0:], modelMagic)
	binary.LittleEndian.PutUint32(blob[4:], modelVersion)
	binary.LittleEndian.PutUint32(blob[8:], crc32.ChecksumIEEE(payload))
	copy(blob[modelHeaderSize:], payload)
	return blob, nil
}

// Decode reverses Encode and validates the result
func Decode(blob []byte) (*forecast.ProphetModel, error) {
	if len(blob) < modelHeaderSize {
		return nil, fmt.Errorf("%w: blob too short (%d bytes)", ErrCorruptModel, len(blob))
	}
	if magic := binary.LittleEndian.Uint32(blob[0:]); magic != modelMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrCorruptModel, magic)
	}
	switch version := binary.LittleEndian.Uint32(blob[4:]); {
	case version < modelVersion:
		return nil, fmt.Errorf("%w: version %d", ErrOutdatedModel, version)
	case version > modelVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptModel, version)
	}

	payload := blob[modelHeaderSize:]
	if sum := binary.LittleEndian.Uint32(blob[8:]); sum != crc32.ChecksumIEEE(payload) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptModel)
	}

	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy decompress failed: %v", ErrCorruptModel, err)
	}

	var model forecast.ProphetModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	return &model, nil
}
