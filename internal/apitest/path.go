package apitest

import (
	"fmt"
	"strconv"
	"strings"
)

// step is one hop in a property path: a map key or an array index.
type step struct {
	key   string
	index int
	isIdx bool
}

// parsePath splits a property path such as "programmers[1].nickname" into
// steps. Dots separate keys; [n] indexes into an array.
func parsePath(path string) ([]step, error) {
	if path == "" {
		return nil, fmt.Errorf("apitest: empty property path")
	}

	var steps []step
	for _, segment := range strings.Split(path, ".") {
		key, rest, _ := strings.Cut(segment, "[")
		if key != "" {
			steps = append(steps, step{key: key})
		} else if rest == "" {
			return nil, fmt.Errorf("apitest: empty segment in property path %q", path)
		}

		for rest != "" {
			num, after, ok := strings.Cut(rest, "]")
			if !ok {
				return nil, fmt.Errorf("apitest: unclosed [ in property path %q", path)
			}
			i, err := strconv.Atoi(num)
			if err != nil || i < 0 {
				return nil, fmt.Errorf("apitest: bad index %q in property path %q", num, path)
			}
			steps = append(steps, step{index: i, isIdx: true})

			if after == "" {
				break
			}
			if !strings.HasPrefix(after, "[") {
				return nil, fmt.Errorf("apitest: unexpected %q in property path %q", after, path)
			}
			rest = after[1:]
		}
	}
	return steps, nil
}

// resolve walks data, as produced by json.Unmarshal into an any, along
// path and returns the value found there.
func resolve(data any, path string) (any, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	current := data
	walked := ""
	for _, s := range steps {
		if s.isIdx {
			list, ok := current.([]any)
			if !ok {
				return nil, fmt.Errorf("property %q is not an array", walked)
			}
			walked += "[" + strconv.Itoa(s.index) + "]"
			if s.index >= len(list) {
				return nil, fmt.Errorf("property %q does not exist (array has %d items)", walked, len(list))
			}
			current = list[s.index]
			continue
		}

		if walked != "" {
			walked += "."
		}
		walked += s.key
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("property %q does not exist: parent is not an object", walked)
		}
		value, ok := obj[s.key]
		if !ok {
			return nil, fmt.Errorf("property %q does not exist", walked)
		}
		current = value
	}
	return current, nil
}
