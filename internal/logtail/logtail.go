package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// zap's ISO8601 time encoding.
const timeLayout = "2006-01-02T15:04:05.000Z0700"

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  map[string]any

	// Raw holds lines that are not JSON log records.
	Raw string
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// ReadEntries reads and parses the last maxLines records. Blank lines are
// skipped.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes one JSON log record. Anything else comes back as Raw.
func Parse(line string) Entry {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return Entry{Raw: line}
	}

	e := Entry{
		Level:   stringField(record, "level"),
		Logger:  stringField(record, "logger"),
		Message: stringField(record, "msg"),
	}
	switch ts := record["ts"].(type) {
	case string:
		e.Time, _ = time.Parse(timeLayout, ts)
	case float64:
		sec := int64(ts)
		e.Time = time.Unix(sec, int64((ts-float64(sec))*1e9))
	}
	delete(record, "ts")
	if len(record) > 0 {
		e.Fields = record
	}
	return e
}

func stringField(record map[string]any, key string) string {
	s, _ := record[key].(string)
	delete(record, key)
	return s
}

// FieldsString renders the extra fields as sorted key=value pairs.
func (e Entry) FieldsString() string {
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := e.Fields[k]
		if s, ok := v.(string); ok {
			parts = append(parts, k+"="+s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
			continue
		}
		parts = append(parts, k+"="+string(data))
	}
	return strings.Join(parts, " ")
}

// String renders e on one line: time, level, logger, message and fields.
func (e Entry) String() string {
	if e.Raw != "" {
		return e.Raw
	}
	parts := make([]string, 0, 5)
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.Local().Format("15:04:05"))
	}
	parts = append(parts, fmt.Sprintf("%-5s", strings.ToUpper(e.Level)))
	if e.Logger != "" {
		parts = append(parts, e.Logger)
	}
	parts = append(parts, e.Message)
	if f := e.FieldsString(); f != "" {
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}
