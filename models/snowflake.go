package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake, Discord'un 64-bit entity ID'sidir (guild, channel, role, user...).
//
// Discord JSON payload'larında ID'ler string olarak gelir ("81384788765712384"),
// çünkü JavaScript number'ları 53 bit'ten büyük tam sayıları kaybeder.
// Bu yüzden MarshalJSON her zaman string yazar, UnmarshalJSON hem string hem number kabul eder.
type Snowflake uint64

// ParseSnowflake, string'den Snowflake parse eder.
func ParseSnowflake(s string) (Snowflake, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	return Snowflake(v), nil
}

// String, ID'yi decimal string olarak döner.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// MarshalJSON, ID'yi tırnaklı string olarak yazar.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON, "123" veya 123 formatını kabul eder.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	v, err := unmarshalUint64(data)
	if err != nil {
		return fmt.Errorf("invalid snowflake: %w", err)
	}
	*s = Snowflake(v)
	return nil
}

// MarshalText, Snowflake'in map key olarak (map[Snowflake]...) JSON'a yazılabilmesi için.
func (s Snowflake) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText, MarshalText'in tersi.
func (s *Snowflake) UnmarshalText(text []byte) error {
	v, err := ParseSnowflake(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Value, database/sql driver'ı için INTEGER değer döner.
// SQLite INTEGER 64-bit signed'dır; snowflake'ler 2^63'ün altında kalır.
func (s Snowflake) Value() (driver.Value, error) {
	return int64(s), nil
}

// Scan, SQLite'tan okunan değeri Snowflake'e çevirir.
func (s *Snowflake) Scan(src any) error {
	v, err := scanUint64(src)
	if err != nil {
		return fmt.Errorf("failed to scan snowflake: %w", err)
	}
	*s = Snowflake(v)
	return nil
}

// unmarshalUint64, JSON'da string veya number olarak gelen uint64'ü parse eder.
// Snowflake ve Permission aynı formatı paylaşır.
func unmarshalUint64(data []byte) (uint64, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		return strconv.ParseUint(s, 10, 64)
	}
	return strconv.ParseUint(string(data), 10, 64)
}

// scanUint64, database/sql'in döndürebileceği tipleri uint64'e çevirir.
func scanUint64(src any) (uint64, error) {
	switch v := src.(type) {
	case int64:
		return uint64(v), nil
	case []byte:
		return strconv.ParseUint(string(v), 10, 64)
	case string:
		return strconv.ParseUint(v, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", src)
	}
}
