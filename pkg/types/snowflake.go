package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DiscordEpoch is the first millisecond of 2015, the epoch of Discord snowflake timestamps.
const DiscordEpoch int64 = 1420070400000

// Snowflake is a Discord object ID. The API sends snowflakes as JSON strings
// to protect JavaScript clients from precision loss; some legacy payloads send
// plain numbers, so both are accepted when decoding.
type Snowflake uint64

// UnmarshalJSON implements json.Unmarshaler for string, number and null snowflakes.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	raw := string(data)
	if len(data) >= 2 && data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid snowflake %s: %w", raw, err)
		}
		raw = unquoted
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snowflake %q: %w", raw, err)
	}
	*s = Snowflake(v)
	return nil
}

// MarshalJSON encodes the snowflake as a JSON string, the form Discord expects.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// String returns the decimal representation of the snowflake.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// CreatedAt returns the creation time encoded in the snowflake.
func (s Snowflake) CreatedAt() time.Time {
	ms := int64(uint64(s)>>22) + DiscordEpoch
	return time.UnixMilli(ms).UTC()
}

// ParseSnowflake parses a decimal snowflake string.
func ParseSnowflake(s string) (Snowflake, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	return Snowflake(v), nil
}

// FlexInt is an integer that may be encoded as a JSON number or as a numeric
// string, e.g. expires_in and permission bitsets.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", s, err)
		}
		*f = FlexInt(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid integer %s: %w", string(data), err)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", string(data), err)
	}
	*f = FlexInt(v)
	return nil
}
