package trace

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical renders e as one canonical JSON object: keys sorted,
// zero-valued optional fields omitted, strings NFC-normalized and
// <, >, & left unescaped.
func MarshalCanonical(e Event) ([]byte, error) {
	fields := map[string]any{
		"step":  e.Step,
		"seq":   e.Seq,
		"event": string(e.Type),
	}
	optional := func(key string, v any, present bool) {
		if present {
			fields[key] = v
		}
	}
	optional("id", int64(e.ID), e.ID != 0 || e.Type == EventAbility || e.Type == EventTrigger || e.Type == EventExecute)
	optional("name", e.Name, e.Name != "")
	optional("depth", int64(e.Depth), e.Depth != 0)
	optional("targets", int64(e.Targets), e.Type == EventTrigger)
	optional("queue", e.Queue, e.Queue != "")
	optional("value_kind", e.ValueKind, e.ValueKind != "")
	optional("value", e.Value, e.ValueKind != "")
	optional("error", e.Error, e.Error != "")
	if e.Type == EventTickEnd {
		fields["abilities"] = int64(e.Abilities)
		fields["callbacks"] = int64(e.Callbacks)
		fields["failures"] = int64(e.Failures)
	}
	return marshalObject(fields)
}

func marshalObject(fields map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		switch v := fields[k].(type) {
		case string:
			s, err := marshalString(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			buf.Write(s)
		case int64:
			buf.WriteString(strconv.FormatInt(v, 10))
		default:
			return nil, fmt.Errorf("field %q: unsupported type %T", k, v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSONL writes one canonical object per line.
func WriteJSONL(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		line, err := MarshalCanonical(e)
		if err != nil {
			return fmt.Errorf("step %d: %w", e.Step, err)
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteText writes one Event.String line per event.
func WriteText(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		bw.WriteString(e.String())
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
