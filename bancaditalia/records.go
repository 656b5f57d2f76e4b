package bancaditalia

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go-bancaditalia/domain"
)

// rawRecord one wire element, keyed by canonical field name.
// It never leaves the package.
type rawRecord struct {
	fields map[string]string
	nested map[string][]rawRecord
	// wire maps canonical names back to the name found on the wire,
	// null members included
	wire map[string]string
}

// get returns the raw value of a canonical field; false when absent or null.
func (r rawRecord) get(field string) (string, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// wireName the field name as the provider sent it, for error reports
func (r rawRecord) wireName(field string) string {
	if w, ok := r.wire[field]; ok {
		return w
	}
	return field
}

// aliases maps provider field names onto canonical names.
type aliases map[string]string

// parseBody splits a body into raw records. The body is either a bare array or
// an object holding the array under dataKey. A provider error envelope wins
// over data.
func parseBody(op, dataKey string, body []byte, names aliases, nestedNames map[string]aliases) ([]rawRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, domain.DeserializeFailed(op, "", -1, "empty body", nil)
	}
	if !json.Valid(body) {
		var probe interface{}
		err := json.Unmarshal(body, &probe)
		return nil, domain.DeserializeFailed(op, "", -1, "body is not valid json", err)
	}

	var elements []json.RawMessage
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &elements); err != nil {
			return nil, domain.DeserializeFailed(op, "", -1, "decoding json array", err)
		}
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(body, &object); err != nil {
			return nil, domain.DeserializeFailed(op, "", -1, "decoding json object", err)
		}
		if apiErr := envelopeError(op, object); apiErr != nil {
			return nil, apiErr
		}
		data, ok := object[dataKey]
		if !ok || isNull(data) {
			return nil, domain.DeserializeFailed(op, dataKey, -1, "missing data array", nil)
		}
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, domain.DeserializeFailed(op, dataKey, -1, "data is not an array", err)
		}
	default:
		return nil, domain.DeserializeFailed(op, "", -1, "unexpected top-level json value", nil)
	}

	records := make([]rawRecord, 0, len(elements))
	for i, element := range elements {
		record, err := toRecord(element, names, nestedNames)
		if err != nil {
			return nil, domain.DeserializeFailed(op, "", i, "record is not an object", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// envelopeError recognises the provider error shapes:
// {"errorCode": .., "errorMessage": ..} and {"error": "msg" | {"code": .., "message": ..}}.
func envelopeError(op string, object map[string]json.RawMessage) *domain.Error {
	if raw, ok := object["error"]; ok && !isNull(raw) {
		var message string
		if json.Unmarshal(raw, &message) == nil {
			return domain.APIError(op, message)
		}
		var nested map[string]json.RawMessage
		if json.Unmarshal(raw, &nested) == nil {
			return envelope(op, scalar(nested["code"]), scalar(nested["message"]))
		}
		return domain.APIError(op, string(raw))
	}

	code, hasCode := object["errorCode"]
	message, hasMessage := object["errorMessage"]
	if (hasCode && !isNull(code)) || (hasMessage && !isNull(message)) {
		return envelope(op, scalar(code), scalar(message))
	}
	return nil
}

func envelope(op, code, message string) *domain.Error {
	if message == "" {
		message = fmt.Sprintf("error code %v", code)
	}
	apiErr := domain.APIError(op, message)
	apiErr.Value = code
	return apiErr
}

func toRecord(element json.RawMessage, names aliases, nestedNames map[string]aliases) (rawRecord, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(element, &object); err != nil {
		return rawRecord{}, err
	}
	if object == nil {
		return rawRecord{}, fmt.Errorf("null record")
	}

	record := rawRecord{
		fields: map[string]string{},
		nested: map[string][]rawRecord{},
		wire:   map[string]string{},
	}
	for key, value := range object {
		canonical := key
		if c, ok := names[key]; ok {
			// a field already sent under its canonical name wins over the alias
			if _, direct := object[c]; direct {
				continue
			}
			canonical = c
		}

		record.wire[canonical] = key
		value = bytes.TrimSpace(value)
		if isNull(value) {
			continue
		}
		switch value[0] {
		case '[':
			var elements []json.RawMessage
			if err := json.Unmarshal(value, &elements); err != nil {
				return rawRecord{}, fmt.Errorf("field %v: %w", key, err)
			}
			nested := make([]rawRecord, 0, len(elements))
			for j, e := range elements {
				n, err := toRecord(e, nestedNames[canonical], nil)
				if err != nil {
					return rawRecord{}, fmt.Errorf("field %v[%d]: %w", key, j, err)
				}
				nested = append(nested, n)
			}
			record.nested[canonical] = nested
		case '{':
			// nested objects carry nothing this client models
		default:
			record.fields[canonical] = scalar(value)
		}
	}
	return record, nil
}

// scalar the text of a json scalar: strings unquoted, anything else as written
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
