// Утилита для генерации Argon2id хеша пароля админ-панели.
// Запуск: go run ./cmd/genhash ваш_пароль
//
// Результат вставьте в .env как ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"serotonyl.ru/vending-bot/internal/features/admin"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run ./cmd/genhash <пароль>")
		os.Exit(1)
	}

	hash, err := admin.HashPassword(os.Args[1], admin.DefaultArgon2Params)
	if err != nil {
		fmt.Printf("Ошибка генерации хеша: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Хеш пароля (вставьте в .env как ADMIN_PASSWORD_HASH):")
	fmt.Println(hash)
}
