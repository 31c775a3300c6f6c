package orders

import (
	"fmt"

	hashids "github.com/speps/go-hashids/v2"
)

// Order numbers are short, non-sequential codes customers read over the
// phone. Derived from the row id with hashids so they are unique without an
// extra column, and not guessable-sequential like the raw id would be.
// Alphabet excludes 0/O/1/I to keep the code unambiguous when spoken.
const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type OrderNumberGenerator struct {
	h *hashids.HashID
}

func NewOrderNumberGenerator(salt string) (*OrderNumberGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 6
	hd.Alphabet = numberAlphabet

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("order number generator: %w", err)
	}

	return &OrderNumberGenerator{h: h}, nil
}

func (g *OrderNumberGenerator) FromID(id int64) (string, error) {
	code, err := g.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("encode order number: %w", err)
	}
	return "TRK-" + code, nil
}
