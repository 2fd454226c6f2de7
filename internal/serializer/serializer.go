// Package serializer turns domain values into their JSON wire form.
//
// Views never use omitempty: a nil field is written as an explicit null so
// clients can tell "present but null" apart from "absent".
package serializer

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/programmer-battle/internal/model"
)

// ContentType is sent with every JSON response.
const ContentType = "application/json"

// ProgrammerView is the public representation of a programmer.
type ProgrammerView struct {
	Nickname     string  `json:"nickname"`
	AvatarNumber int     `json:"avatarNumber"`
	TagLine      *string `json:"tagLine"`
	PowerLevel   int     `json:"powerLevel"`
}

// CollectionView wraps a list of programmers under the "programmers" key.
type CollectionView struct {
	Programmers []ProgrammerView `json:"programmers"`
}

// UserView is the public representation of a user. The password hash is
// never part of it.
type UserView struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Programmer builds the view for a single programmer.
func Programmer(p *model.Programmer) ProgrammerView {
	return ProgrammerView{
		Nickname:     p.Nickname,
		AvatarNumber: p.AvatarNumber,
		TagLine:      p.TagLine,
		PowerLevel:   p.PowerLevel,
	}
}

// Programmers builds the collection view, keeping source order. An empty
// input serializes as [] rather than null.
func Programmers(ps []model.Programmer) CollectionView {
	views := make([]ProgrammerView, 0, len(ps))
	for i := range ps {
		views = append(views, Programmer(&ps[i]))
	}
	return CollectionView{Programmers: views}
}

// User builds the view for a user.
func User(u *model.User) UserView {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserView{
		Username: u.Username,
		Email:    u.Email,
		Roles:    roles,
	}
}

// Marshal encodes v as JSON text.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// WriteJSON sends v as a JSON response with the given status code.
//
// Headers must be set before WriteHeader; once the body starts, header
// changes are silently ignored. A nil v writes no body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; all that is left is to log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
