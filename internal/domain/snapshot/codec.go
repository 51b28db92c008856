// Package snapshot turns job records into canonical text snapshots and diffs them.
//
// A snapshot is one line per record, fields joined by a single delimiter in the
// fixed order title|href|domain|grade|institution|location|deadline. Values are
// not escaped, so Encode refuses records whose fields contain the delimiter or a
// line break instead of writing a line that would decode differently.
package snapshot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

const (
	// DefaultDelimiter separates fields within a canonical line
	DefaultDelimiter = "|"
	// LineTerminator ends every canonical line
	LineTerminator = "\n"
)

// ErrReservedCharacter is returned when a field value would break the line format
var ErrReservedCharacter = errors.New("field contains a reserved character")

// Codec maps records to canonical lines and back
type Codec struct {
	Delimiter string
}

// NewCodec returns a codec using delim, or DefaultDelimiter when delim is empty
func NewCodec(delim string) Codec {
	if delim == "" {
		delim = DefaultDelimiter
	}
	return Codec{Delimiter: delim}
}

func (c Codec) delimiter() string {
	if c.Delimiter == "" {
		return DefaultDelimiter
	}
	return c.Delimiter
}

// Encode renders r as one canonical line including the line terminator
func (c Codec) Encode(r domain.JobRecord) (string, error) {
	delim := c.delimiter()
	fields := r.Fields()

	for i, v := range fields {
		if strings.Contains(v, delim) || strings.ContainsAny(v, "\r\n") {
			return "", fmt.Errorf("snapshot: encode %s %q: %w", domain.FieldNames[i], v, ErrReservedCharacter)
		}
	}

	return strings.Join(fields[:], delim) + LineTerminator, nil
}

// Decode parses a canonical line positionally. It never fails: short lines leave
// trailing fields empty and surplus segments are dropped.
func (c Codec) Decode(line string) domain.JobRecord {
	line = strings.TrimSuffix(line, LineTerminator)
	line = strings.TrimSuffix(line, "\r")

	return domain.RecordFromFields(strings.Split(line, c.delimiter()))
}
