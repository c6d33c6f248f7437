package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// errorBody is the backend's error document, e.g. a 422 from the validator:
//
//	{"message": "The email field is required.", "errors": {"email": ["The email field is required."]}}
type errorBody struct {
	Message string      `json:"message"`
	Errors  fieldErrors `json:"errors"`
}

// fieldErrors keeps the document order of the fields so "first field" means what the
// backend sent first.
type fieldErrors struct {
	fields   []string
	messages map[string][]string
}

func (f *fieldErrors) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, isDelim := tok.(json.Delim); !isDelim || delim != '{' {
		return fmt.Errorf("errors must be an object, got %v", tok)
	}
	f.messages = make(map[string][]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		field, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		msgs, err := decodeMessages(raw)
		if err != nil {
			return fmt.Errorf("errors.%s: %w", field, err)
		}
		if _, seen := f.messages[field]; !seen {
			f.fields = append(f.fields, field)
		}
		f.messages[field] = msgs
	}
	_, err = dec.Token()
	return err
}

// decodeMessages accepts both ["a", "b"] and a bare "a".
func decodeMessages(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []string{single}, nil
}

func (f fieldErrors) first() string {
	for _, field := range f.fields {
		if msgs := f.messages[field]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// apiError normalises the body into the error branch. Field errors win over the flat message.
func (b errorBody) apiError() *APIError {
	if len(b.Errors.fields) > 0 {
		msg := b.Errors.first()
		if msg == "" {
			msg = b.Message
		}
		if msg == "" {
			msg = MsgGenericError
		}
		return &APIError{Message: msg, Errors: b.Errors.messages, Kind: KindValidation}
	}
	msg := b.Message
	if msg == "" {
		msg = MsgGenericError
	}
	return &APIError{Message: msg, Kind: KindAPI}
}
