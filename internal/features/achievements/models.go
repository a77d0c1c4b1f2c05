// Package achievements ведёт журнал достижений участников.
package achievements

import "time"

// MaxTextRunes — максимальная длина текста достижения.
const MaxTextRunes = 500

// Achievement — одна запись журнала.
type Achievement struct {
	Text     string
	Date     time.Time
	UserName string // Имя автора на момент записи
}
