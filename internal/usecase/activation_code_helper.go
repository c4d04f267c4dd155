package usecase

import (
	"crypto/rand"
	"io"

	"account-activation/internal/domain"
	"account-activation/internal/domain/ports/adapter"
)

// codeAlphabet avoids ambiguous characters like O/0, I/1, l. Its size divides
// 256 so every byte maps onto it without bias.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var _ adapter.CodeGenerator = (*randomCodeGenerator)(nil)

type randomCodeGenerator struct {
	rnd io.Reader
}

// NewCodeGenerator returns a CodeGenerator backed by crypto/rand.
func NewCodeGenerator() adapter.CodeGenerator {
	return &randomCodeGenerator{rnd: rand.Reader}
}

// Generate creates a secure, random code of exactly length characters.
func (g *randomCodeGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", domain.ErrInvalidArgument
	}
	buffer := make([]byte, length)
	if _, err := io.ReadFull(g.rnd, buffer); err != nil {
		return "", err
	}
	for i := range buffer {
		buffer[i] = codeAlphabet[int(buffer[i])%len(codeAlphabet)]
	}
	return string(buffer), nil
}
