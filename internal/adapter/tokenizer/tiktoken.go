package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken wraps a tiktoken BPE encoding as a TokenCodec. Decode(Encode(x))
// round-trips exactly for any UTF-8 input.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding. cl100k_base is what the embedding
// models used here count against.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
