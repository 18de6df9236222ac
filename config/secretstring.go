package config

// SecretStringValue replaces real secret values in any serialized form.
const SecretStringValue = "<secret>"

// SecretString holds values that must never appear in logs or configuration
// dumps, like the generator API key. Empty secrets serialize as null so a
// dump still shows whether a key was configured at all.
type SecretString string

func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + SecretStringValue + `"`), nil
}

func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}
