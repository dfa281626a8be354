package service

import (
	"errors"
	"strings"
)

// ErrForbidden indica que la identidad autenticada no es la dueña del recurso.
var ErrForbidden = errors.New("forbidden")

// Authorize compara la identidad autenticada con el dueño declarado del recurso.
// Una identidad vacía nunca es dueña de nada.
func Authorize(identity, owner string) error {
	if strings.TrimSpace(identity) == "" || identity != owner {
		return ErrForbidden
	}
	return nil
}

// AuthorizeAny permite el acceso si la identidad coincide con alguno de los dueños.
func AuthorizeAny(identity string, owners ...string) error {
	for _, owner := range owners {
		if Authorize(identity, owner) == nil {
			return nil
		}
	}
	return ErrForbidden
}
