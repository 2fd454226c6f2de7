package model

import (
	"sort"
	"time"
)

// Avatar choices. The key is the value stored and sent over the wire; the
// label is presentation only and never part of the API contract.
var AvatarChoices = map[int]string{
	1: "Girl (green)",
	2: "Boy",
	3: "Cat",
	4: "Boy with Hat",
	5: "Happy Robot",
	6: "Girl (purple)",
}

// ValidAvatar reports whether n is one of the AvatarChoices keys.
func ValidAvatar(n int) bool {
	_, ok := AvatarChoices[n]
	return ok
}

// AvatarNumbers returns the valid avatar keys in ascending order.
func AvatarNumbers() []int {
	keys := make([]int, 0, len(AvatarChoices))
	for k := range AvatarChoices {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Programmer is a battle contestant, addressed by its unique Nickname.
//
// ID is an internal surrogate key (xid) and is never exposed over HTTP.
// Nickname is fixed at creation; updates never rewrite it.
//
// WHY TagLine *string?
// The API distinguishes "no tag line" (null) from an empty string on the wire.
// A nil pointer serializes as null; a plain string could only ever be "".
type Programmer struct {
	ID           string    `json:"-"            db:"id"`
	Nickname     string    `json:"nickname"     db:"nickname"`
	AvatarNumber int       `json:"avatarNumber" db:"avatar_number"`
	TagLine      *string   `json:"tagLine"      db:"tag_line"`
	PowerLevel   int       `json:"powerLevel"   db:"power_level"` // server assigned, read-only over HTTP
	UserID       string    `json:"-"            db:"user_id"`     // owning user, set once at creation
	CreatedAt    time.Time `json:"-"            db:"created_at"`
	UpdatedAt    time.Time `json:"-"            db:"updated_at"`
}

// AvatarLabel returns the display label for the programmer's avatar, or ""
// when the number is not a known choice.
func (p *Programmer) AvatarLabel() string {
	return AvatarChoices[p.AvatarNumber]
}
