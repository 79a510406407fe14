package calculator

import "errors"

var (
	ErrStorage    = errors.New("calculator: storage error")
	ErrNotFound   = errors.New("calculator: not found")
	ErrValidation = errors.New("calculator: validation error")

	// ErrNoDocument возвращается хранилищем, если каталог ещё не сохранён.
	ErrNoDocument = errors.New("calculator: no stored catalog")
)
