package dialog

import "encoding/json"

// GetString Helper для безопасного чтения строк из payload
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt читает число; после JSON все числа приходят как float64.
func GetInt(p Payload, key string) (int, bool) {
	switch v := p[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// GetJSON раскладывает значение payload[key] в dst (структуры после
// круга через JSON лежат в payload как map[string]any).
func GetJSON(p Payload, key string, dst any) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// With возвращает копию payload с новыми значениями.
func (p Payload) With(kv ...any) Payload {
	out := make(Payload, len(p)+len(kv)/2)
	for k, v := range p {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			out[k] = kv[i+1]
		}
	}
	return out
}
