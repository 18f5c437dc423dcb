package utils

import "strings"

// NormalizeRegistration нормализует регистрационный номер к единому формату
// Удаляет пробелы, дефисы и приводит к верхнему регистру
func NormalizeRegistration(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
