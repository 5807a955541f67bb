package utils

import (
	"crypto/sha256"
	"fmt"
)

func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", sum)
}
