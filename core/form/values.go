package form

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ParseValues turns form-encoded values into the nested shape JSON submissions have:
// `dates[startDate][day]` becomes {"dates": {"startDate": {"day": ...}}} and
// `budget[0][item]` becomes {"budget": [{"item": ...}]}.
// Repeated keys and keys ending in `[]` become lists.
func ParseValues(vals url.Values) Data {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(map[string]interface{})
	for _, key := range keys {
		path := splitKey(key)
		if len(path) == 0 {
			continue
		}
		vs := vals[key]
		isList := path[len(path)-1] == ""
		if isList {
			path = path[:len(path)-1]
			if len(path) == 0 {
				continue
			}
		}

		var v interface{}
		if len(vs) == 1 && !isList {
			v = vs[0]
		} else {
			list := make([]interface{}, 0, len(vs))
			for _, s := range vs {
				list = append(list, s)
			}
			v = list
		}
		set(root, path, v)
	}

	for k, v := range root {
		root[k] = toSlices(v)
	}
	return root
}

// splitKey splits "a[b][c]" into ["a", "b", "c"].
func splitKey(key string) []string {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		if key == "" {
			return nil
		}
		return []string{key}
	}
	if i == 0 {
		return nil
	}

	path := []string{key[:i]}
	rest := key[i:]
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

func set(m map[string]interface{}, path []string, v interface{}) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

// toSlices converts maps whose keys are all indexes into lists ordered by index.
func toSlices(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	for k, item := range m {
		m[k] = toSlices(item)
	}

	indexes := make([]int, 0, len(m))
	byIndex := make(map[int]interface{}, len(m))
	for k, item := range m {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			return m
		}
		indexes = append(indexes, n)
		byIndex[n] = item
	}
	if len(indexes) == 0 {
		return m
	}
	sort.Ints(indexes)
	list := make([]interface{}, 0, len(indexes))
	for _, n := range indexes {
		list = append(list, byIndex[n])
	}
	return list
}
