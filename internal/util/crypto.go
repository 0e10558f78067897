package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const lowerAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func GenerateNChar(n int) (string, error) {
	id, err := gonanoid.New(n)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GenerateLowerNChar only uses characters allowed in a procedure path.
func GenerateLowerNChar(n int) (string, error) {
	return gonanoid.Generate(lowerAlphabet, n)
}
