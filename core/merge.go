package core

// FillMissingDefaults copies every key of defaults that is absent from
// current into current, recursing where both sides hold a mapping. Keys
// already present in current are never overwritten, whatever their type.
// It returns current, allocating it when nil.
func FillMissingDefaults(defaults, current map[string]interface{}) map[string]interface{} {
	if current == nil {
		current = map[string]interface{}{}
	}
	for key, value := range defaults {
		existing, ok := current[key]
		if !ok {
			current[key] = deepCopy(value)
			continue
		}
		defaultNode, dok := value.(map[string]interface{})
		currentNode, cok := existing.(map[string]interface{})
		if dok && cok {
			FillMissingDefaults(defaultNode, currentNode)
		}
	}
	return current
}

func deepCopy(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
