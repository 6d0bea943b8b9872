package encode

import (
	"errors"
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const endOfText = "<|endoftext|>"

// Vocabulary maps text to token ids
type Vocabulary interface {
	Encode(text string) []int
}

// PairTokenizer lays a pair out as [CLS] a [SEP] b [SEP] and pads on the right.
// Segment a and its separators get type id 0, segment b and its separator 1.
type PairTokenizer struct {
	vocab     Vocabulary
	maxLength int
	clsID     int
	sepID     int
	padID     int
}

// SpecialTokens are the ids placed around and after the two segments
type SpecialTokens struct {
	CLS int
	SEP int
	PAD int
}

// NewPairTokenizer creates a tokenizer over vocab
func NewPairTokenizer(vocab Vocabulary, maxLength int, special SpecialTokens) (*PairTokenizer, error) {
	if vocab == nil {
		return nil, errors.New("vocabulary is required")
	}
	if maxLength < 3 {
		return nil, fmt.Errorf("max length must be at least 3, got %d", maxLength)
	}
	return &PairTokenizer{
		vocab:     vocab,
		maxLength: maxLength,
		clsID:     special.CLS,
		sepID:     special.SEP,
		padID:     special.PAD,
	}, nil
}

// bpeVocabulary adapts a tiktoken encoding
type bpeVocabulary struct {
	bpe *tiktoken.Tiktoken
}

func (v bpeVocabulary) Encode(text string) []int {
	return v.bpe.EncodeOrdinary(text)
}

// NewTiktokenTokenizer creates a pair tokenizer on a tiktoken BPE encoding
// (e.g. cl100k_base). <|endoftext|> serves as CLS, SEP and PAD; padding is
// masked out by the attention mask.
func NewTiktokenTokenizer(encodingName string, maxLength int) (*PairTokenizer, error) {
	bpe, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encodingName, err)
	}

	eot := bpe.Encode(endOfText, []string{endOfText}, nil)
	if len(eot) != 1 {
		return nil, fmt.Errorf("encoding %s has no %s token", encodingName, endOfText)
	}

	special := SpecialTokens{CLS: eot[0], SEP: eot[0], PAD: eot[0]}
	return NewPairTokenizer(bpeVocabulary{bpe: bpe}, maxLength, special)
}

// MaxLength implements TextPairEncoder
func (t *PairTokenizer) MaxLength() int {
	return t.maxLength
}

// EncodePairs implements TextPairEncoder
func (t *PairTokenizer) EncodePairs(pairs []TextPair, maxLength int) (*BatchEncoding, error) {
	if maxLength == 0 {
		maxLength = t.maxLength
	}
	if maxLength < 3 {
		return nil, fmt.Errorf("max length must be at least 3, got %d", maxLength)
	}

	batch := &BatchEncoding{
		InputIDs:      make([][]int, len(pairs)),
		AttentionMask: make([][]int, len(pairs)),
		TokenTypeIDs:  make([][]int, len(pairs)),
	}

	for i, pair := range pairs {
		a, b := truncateLongestFirst(t.vocab.Encode(pair.A), t.vocab.Encode(pair.B), maxLength-3)
		batch.InputIDs[i], batch.AttentionMask[i], batch.TokenTypeIDs[i] = t.layout(a, b, maxLength)
	}
	return batch, nil
}

func (t *PairTokenizer) layout(a, b []int, maxLength int) (ids, mask, types []int) {
	ids = make([]int, 0, maxLength)
	types = make([]int, 0, maxLength)

	ids = append(ids, t.clsID)
	ids = append(ids, a...)
	ids = append(ids, t.sepID)
	for len(types) < len(ids) {
		types = append(types, 0)
	}

	ids = append(ids, b...)
	ids = append(ids, t.sepID)
	for len(types) < len(ids) {
		types = append(types, 1)
	}

	mask = make([]int, maxLength)
	for i := range ids {
		mask[i] = 1
	}

	for len(ids) < maxLength {
		ids = append(ids, t.padID)
		types = append(types, 0)
	}
	return ids, mask, types
}

// truncateLongestFirst drops tokens from the end of the longer sequence
// (b on ties) until both fit in budget
func truncateLongestFirst(a, b []int, budget int) ([]int, []int) {
	for len(a)+len(b) > budget {
		if len(a) > len(b) {
			a = a[:len(a)-1]
		} else {
			b = b[:len(b)-1]
		}
	}
	return a, b
}
