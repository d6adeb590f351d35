package cache

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// entry is the stored envelope. ExpiresAt is checked on read even when the
// driver enforces its own TTL.
type entry struct {
	LocationKey string          `json:"locationKey"`
	ModelName   string          `json:"modelName"`
	Data        json.RawMessage `json:"data"`
	ExpiresAt   time.Time       `json:"expiresAt"`
}

// Codec serializes cache entries as zstd-compressed JSON.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

func (c *Codec) encode(e entry) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (c *Codec) decode(b []byte) (entry, error) {
	raw, err := c.decoder.DecodeAll(b, nil)
	if err != nil {
		return entry{}, err
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, err
	}
	return e, nil
}

// Close releases the decoder goroutines.
func (c *Codec) Close() {
	c.decoder.Close()
}
