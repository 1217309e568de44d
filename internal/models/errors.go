package models

import "errors"

var (
	// ErrNotFound возвращается, когда запись отсутствует в хранилище
	ErrNotFound = errors.New("not found")
	// ErrStatusConflict возвращается условной записью, если инцидент изменился после чтения
	ErrStatusConflict = errors.New("incident changed concurrently")
	// ErrUserInUse возвращается при удалении пользователя, на которого ссылаются инциденты
	ErrUserInUse = errors.New("user is referenced by incidents")
)
