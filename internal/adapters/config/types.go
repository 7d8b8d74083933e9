package config

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/units"
	"github.com/dustin/go-humanize"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ByteSize is a byte count that accepts either a plain number or a unit string such as "512MiB".
type ByteSize int64

// ParseByteSize parses a plain integer or a base-2 unit string.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ByteSize(n), nil
	}
	n, err := units.ParseBase2Bytes(s)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "invalid byte size"), "value", s)
	}
	return ByteSize(n), nil
}

// String formats the size in IEC units.
func (b ByteSize) String() string {
	if b < 0 {
		return strconv.FormatInt(int64(b), 10)
	}
	return humanize.IBytes(uint64(b))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// UnmarshalJSON accepts a JSON number or string.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return b.UnmarshalText([]byte(s))
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return zerr.Wrap(err, "invalid byte size")
	}
	*b = ByteSize(n)
	return nil
}

// UnmarshalYAML accepts a YAML integer or string.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	return b.UnmarshalText([]byte(node.Value))
}

// Duration is a time.Duration that accepts a Go duration string or a number of seconds.
type Duration time.Duration

// ParseDuration parses "90s"-style strings or a bare number of seconds.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "invalid duration"), "value", s)
	}
	return Duration(d), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// UnmarshalJSON accepts a JSON number of seconds or a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	return d.UnmarshalText(data)
}

// UnmarshalYAML accepts a YAML number of seconds or a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
