package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Location возвращает IANA-зону по идентификатору.
// Пустой или неизвестный идентификатор трактуется как UTC: данные машины
// должны оставаться доступными даже при испорченных метаданных зоны.
func Location(tzID *string) *time.Location {
	if tzID == nil || strings.TrimSpace(*tzID) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(strings.TrimSpace(*tzID))
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseInZone разбирает время и приводит его к UTC. Строка с явным
// смещением используется как есть, строка без смещения интерпретируется
// в переданной зоне.
func ParseInZone(raw string, tzID *string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}

	loc := Location(tzID)
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time value %q", raw)
}

// ToZone переводит момент времени в зону отображения.
func ToZone(t time.Time, tzID *string) time.Time {
	return t.In(Location(tzID))
}
