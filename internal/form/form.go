// Package form binds decoded JSON request payloads onto programmer entities.
//
// A single ProgrammerBinder serves both create and update. Behaviour is
// switched by Options rather than by separate types:
//
//	create: Options{ClearMissing: true}
//	PUT:    Options{ClearMissing: true, Editing: true}
//	PATCH:  Options{ClearMissing: false, Editing: true}
package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/model"
)

// MaxNicknameLength bounds the nickname on create, in characters.
const MaxNicknameLength = 100

// Field names as they appear in the JSON payload.
const (
	FieldNickname     = "nickname"
	FieldAvatarNumber = "avatarNumber"
	FieldTagLine      = "tagLine"
)

// Options configures one Bind call.
type Options struct {
	// Editing disables the nickname field: whatever the payload carries for
	// it is ignored, so an existing programmer keeps its nickname.
	Editing bool

	// ClearMissing resets recognised fields that are absent from the payload
	// to their zero value (full replace). When false, absent fields keep
	// their current value (partial update).
	ClearMissing bool
}

// Payload is a decoded JSON object, one raw value per key.
type Payload map[string]json.RawMessage

// Decode parses a request body into a Payload. A body that is empty, not
// valid JSON, or not a JSON object yields an empty payload and ok=false; the
// binder then treats it as "no fields provided".
func Decode(body []byte) (p Payload, ok bool) {
	p = Payload{}
	if len(bytes.TrimSpace(body)) == 0 {
		return p, false
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return Payload{}, false
	}
	return p, true
}

// lookup returns the raw value for key and whether the key was present.
// A JSON null is reported as present with a nil value.
func (p Payload) lookup(key string) (json.RawMessage, bool) {
	raw, ok := p[key]
	if !ok {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, true
	}
	return raw, true
}

// ProgrammerBinder maps payload fields onto a model.Programmer.
type ProgrammerBinder struct{}

// NewProgrammerBinder returns a binder that accepts model.AvatarChoices.
func NewProgrammerBinder() *ProgrammerBinder {
	return &ProgrammerBinder{}
}

// Bind applies data to p according to opts.
//
// Every field error is collected and returned together as one
// apperror.ErrValidation error. p is only modified when binding succeeds.
// Keys other than nickname, avatarNumber and tagLine are ignored; in
// particular powerLevel and the owning user cannot be set this way.
func (b *ProgrammerBinder) Bind(data Payload, p *model.Programmer, opts Options) error {
	next := *p
	errs := map[string]string{}

	if !opts.Editing {
		b.bindNickname(data, &next, opts, errs)
	}
	b.bindAvatarNumber(data, &next, opts, errs)
	b.bindTagLine(data, &next, opts, errs)

	if len(errs) > 0 {
		return apperror.Invalid(errs)
	}

	*p = next
	return nil
}

func (b *ProgrammerBinder) bindNickname(data Payload, p *model.Programmer, opts Options, errs map[string]string) {
	raw, present := data.lookup(FieldNickname)
	switch {
	case present && raw != nil:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			errs[FieldNickname] = "nickname must be a string"
			return
		}
		p.Nickname = strings.TrimSpace(s)
	case present || opts.ClearMissing:
		p.Nickname = ""
	}

	if p.Nickname == "" {
		errs[FieldNickname] = "Please enter a clever nickname"
		return
	}
	if utf8.RuneCountInString(p.Nickname) > MaxNicknameLength {
		errs[FieldNickname] = fmt.Sprintf("nickname must be %d characters or less", MaxNicknameLength)
	}
}

func (b *ProgrammerBinder) bindAvatarNumber(data Payload, p *model.Programmer, opts Options, errs map[string]string) {
	raw, present := data.lookup(FieldAvatarNumber)
	switch {
	case present && raw != nil:
		n, err := parseChoice(raw)
		if err != nil {
			errs[FieldAvatarNumber] = "avatarNumber must be an integer"
			return
		}
		p.AvatarNumber = n
	case present || opts.ClearMissing:
		p.AvatarNumber = 0
	}

	if p.AvatarNumber == 0 {
		errs[FieldAvatarNumber] = "Please choose an avatar"
		return
	}
	if !model.ValidAvatar(p.AvatarNumber) {
		errs[FieldAvatarNumber] = fmt.Sprintf("This value is not valid. Choose one of %s", choiceList())
	}
}

func (b *ProgrammerBinder) bindTagLine(data Payload, p *model.Programmer, opts Options, errs map[string]string) {
	raw, present := data.lookup(FieldTagLine)
	switch {
	case present && raw != nil:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			errs[FieldTagLine] = "tagLine must be a string"
			return
		}
		// An empty tag line is stored as null, like an empty form field.
		if s = strings.TrimSpace(s); s == "" {
			p.TagLine = nil
		} else {
			p.TagLine = &s
		}
	case present || opts.ClearMissing:
		p.TagLine = nil
	}
}

// parseChoice accepts a JSON integer or a string holding one, the way a form
// choice field accepts its submitted value.
func parseChoice(raw json.RawMessage) (int, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch tv := v.(type) {
	case json.Number:
		n = tv
	case string:
		n = json.Number(strings.TrimSpace(tv))
	default:
		return 0, fmt.Errorf("form: unexpected %T for choice", v)
	}

	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, fmt.Errorf("form: choice %q is not an integer: %w", n, err)
	}
	return i, nil
}

func choiceList() string {
	keys := model.AvatarNumbers()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strconv.Itoa(k))
	}
	return strings.Join(parts, ", ")
}
