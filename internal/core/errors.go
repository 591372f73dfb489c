package core

import (
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// chainExhaustedPrefix starts the message of errors returned when a
// reference or attribute chain hits the iteration cap.
const chainExhaustedPrefix = "resolution chain exhausted"

// maxChainIterations caps reference and attribute indirection.
const maxChainIterations = 20

func notFound(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msg)
}

func corrupt(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg)
}

func chainExhausted(msg string) error {
	return notFound(chainExhaustedPrefix + ": " + msg)
}

func IsNotFound(err error) bool {
	return err != nil && errbuilder.CodeOf(err) == errbuilder.CodeNotFound
}

// IsChainExhausted reports whether err came from hitting the reference or
// attribute iteration cap.
func IsChainExhausted(err error) bool {
	if !IsNotFound(err) {
		return false
	}
	var builder *errbuilder.ErrBuilder
	return errors.As(err, &builder) && strings.HasPrefix(builder.Msg, chainExhaustedPrefix)
}
