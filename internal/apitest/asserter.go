package apitest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/programmer-battle/internal/apiclient"
)

// ResponseAsserter checks properties of a JSON response body by path, e.g.
// "nickname" or "programmers[1].nickname". Every assertion reports through
// testify, so a failed check marks the test failed and returns false.
type ResponseAsserter struct {
	t testing.TB
}

// NewResponseAsserter returns an asserter reporting to t.
func NewResponseAsserter(t testing.TB) *ResponseAsserter {
	return &ResponseAsserter{t: t}
}

func (a *ResponseAsserter) decode(resp *apiclient.Response) (any, bool) {
	a.t.Helper()
	var data any
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		a.t.Errorf("response body is not valid JSON: %v\n%s", err, resp.Body)
		return nil, false
	}
	return data, true
}

// ReadResponseProperty returns the value at path. A missing property fails
// the test and returns nil.
func (a *ResponseAsserter) ReadResponseProperty(resp *apiclient.Response, path string) any {
	a.t.Helper()
	data, ok := a.decode(resp)
	if !ok {
		return nil
	}
	value, err := resolve(data, path)
	if err != nil {
		a.t.Error(err)
		return nil
	}
	return value
}

// AssertResponsePropertiesExist checks that every path is present.
func (a *ResponseAsserter) AssertResponsePropertiesExist(resp *apiclient.Response, paths ...string) bool {
	a.t.Helper()
	ok := true
	for _, path := range paths {
		ok = a.AssertResponsePropertyExists(resp, path) && ok
	}
	return ok
}

// AssertResponsePropertyExists checks that path is present. A present
// property whose value is null still exists.
func (a *ResponseAsserter) AssertResponsePropertyExists(resp *apiclient.Response, path string) bool {
	a.t.Helper()
	data, ok := a.decode(resp)
	if !ok {
		return false
	}
	_, err := resolve(data, path)
	return assert.NoError(a.t, err, "expected property %q to exist", path)
}

// AssertResponsePropertyDoesNotExist checks that path is absent.
func (a *ResponseAsserter) AssertResponsePropertyDoesNotExist(resp *apiclient.Response, path string) bool {
	a.t.Helper()
	data, ok := a.decode(resp)
	if !ok {
		return false
	}
	value, err := resolve(data, path)
	return assert.Error(a.t, err, "expected property %q not to exist, found %v", path, value)
}

// AssertResponsePropertyEquals checks the value at path. expected is
// normalised through JSON first, so 5 compares equal to the decoded 5.0.
func (a *ResponseAsserter) AssertResponsePropertyEquals(resp *apiclient.Response, path string, expected any) bool {
	a.t.Helper()
	value := a.ReadResponseProperty(resp, path)
	want, err := normalize(expected)
	if err != nil {
		a.t.Errorf("cannot compare against %#v: %v", expected, err)
		return false
	}
	return assert.Equal(a.t, want, value, "property %q", path)
}

// AssertResponsePropertyIsArray checks that path holds a JSON array.
func (a *ResponseAsserter) AssertResponsePropertyIsArray(resp *apiclient.Response, path string) bool {
	a.t.Helper()
	value := a.ReadResponseProperty(resp, path)
	return assert.IsType(a.t, []any{}, value, "property %q should be an array", path)
}

// AssertResponsePropertyCount checks the length of the array at path.
func (a *ResponseAsserter) AssertResponsePropertyCount(resp *apiclient.Response, path string, count int) bool {
	a.t.Helper()
	value := a.ReadResponseProperty(resp, path)
	list, ok := value.([]any)
	if !ok {
		a.t.Errorf("property %q should be an array, got %T", path, value)
		return false
	}
	return assert.Len(a.t, list, count, "property %q", path)
}

// AssertResponsePropertyContains checks that the string at path contains
// expected as a substring, or that the array at path contains it as an
// element.
func (a *ResponseAsserter) AssertResponsePropertyContains(resp *apiclient.Response, path string, expected any) bool {
	a.t.Helper()
	value := a.ReadResponseProperty(resp, path)
	want, err := normalize(expected)
	if err != nil {
		a.t.Errorf("cannot compare against %#v: %v", expected, err)
		return false
	}
	return assert.Contains(a.t, value, want, "property %q", path)
}

// normalize passes v through JSON so Go values compare equal to decoded ones.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(data, &out)
	return out, err
}
