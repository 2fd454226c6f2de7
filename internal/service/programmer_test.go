package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/form"
	"github.com/sakif/programmer-battle/internal/model"
)

const testCreator = "weaverryan"

func newTestProgrammerService(t *testing.T) (*ProgrammerService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewProgrammerService(store, store, form.NewProgrammerBinder(), testCreator, discardLogger())
	return svc, store
}

func payload(t *testing.T, body string) form.Payload {
	t.Helper()
	p, ok := form.Decode([]byte(body))
	require.True(t, ok, "test payload must be a JSON object: %s", body)
	return p
}

func TestCreate_DefaultCreatorOwnsAnonymousProgrammer(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	creator := store.addUser(t, testCreator)

	p, err := svc.Create(context.Background(), payload(t, `{"nickname":"ObjectOrienter","avatarNumber":5,"tagLine":"a test dev!"}`), "")
	require.NoError(t, err)

	assert.Equal(t, "ObjectOrienter", p.Nickname)
	assert.Equal(t, 5, p.AvatarNumber)
	require.NotNil(t, p.TagLine)
	assert.Equal(t, "a test dev!", *p.TagLine)
	assert.Equal(t, 0, p.PowerLevel)
	assert.Equal(t, creator.ID, p.UserID)
	assert.NotEmpty(t, p.ID)
}

func TestCreate_AuthenticatedUserOwnsProgrammer(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	store.addUser(t, testCreator)
	owner := store.addUser(t, "ryan")

	p, err := svc.Create(context.Background(), payload(t, `{"nickname":"Fred","avatarNumber":1}`), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, p.UserID)
}

func TestCreate_UnknownUserFallsBackToCreator(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	creator := store.addUser(t, testCreator)

	p, err := svc.Create(context.Background(), payload(t, `{"nickname":"Fred","avatarNumber":1}`), "purged-user")
	require.NoError(t, err)
	assert.Equal(t, creator.ID, p.UserID)
}

func TestCreate_MissingCreatorIsInternalError(t *testing.T) {
	svc, store := newTestProgrammerService(t)

	_, err := svc.Create(context.Background(), payload(t, `{"nickname":"Fred","avatarNumber":1}`), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCreator)
	assert.False(t, errors.Is(err, apperror.ErrNotFound), "must not surface as a 404")
	assert.Empty(t, store.programmers)
}

func TestCreate_IgnoresPowerLevel(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	store.addUser(t, testCreator)

	p, err := svc.Create(context.Background(), payload(t, `{"nickname":"Fred","avatarNumber":1,"powerLevel":9000}`), "")
	require.NoError(t, err)
	assert.Equal(t, 0, p.PowerLevel)
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	store.addUser(t, testCreator)

	_, err := svc.Create(context.Background(), form.Payload{}, "")
	require.ErrorIs(t, err, apperror.ErrValidation)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Please enter a clever nickname", appErr.Fields["nickname"])
	assert.Contains(t, appErr.Fields, "avatarNumber")
	assert.Empty(t, store.programmers)
}

func TestCreate_DuplicateNickname(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	store.addUser(t, testCreator)

	_, err := svc.Create(context.Background(), payload(t, `{"nickname":"Fred","avatarNumber":1}`), "")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), payload(t, `{"nickname":"Fred","avatarNumber":2}`), "")
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Len(t, store.programmers, 1)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestProgrammerService(t)

	_, err := svc.Get(context.Background(), "fake")
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, `No programmer found with nickname "fake"`, err.Error())
}

func TestList_InsertionOrder(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	store.addUser(t, testCreator)

	for _, name := range []string{"UnitTester", "CowboyCoder", "AgileAnna"} {
		_, err := svc.Create(context.Background(), payload(t, `{"nickname":"`+name+`","avatarNumber":3}`), "")
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "CowboyCoder", list[1].Nickname)
}

func TestList_StoreFailure(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	store.findAllErr = errDatabaseDown

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, errDatabaseDown)
}

func seedProgrammer(t *testing.T, store *fakeStore, nickname string, avatar int, tagLine *string) {
	t.Helper()
	owner := store.addUser(t, nickname+"-owner")
	p := &model.Programmer{Nickname: nickname, AvatarNumber: avatar, TagLine: tagLine, PowerLevel: 7, UserID: owner.ID}
	require.NoError(t, store.Create(context.Background(), p))
}

func strPtr(s string) *string { return &s }

func TestUpdate_ReplaceKeepsNickname(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "CowboyCoder", 5, strPtr("foo"))

	p, err := svc.Update(context.Background(), "CowboyCoder",
		payload(t, `{"nickname":"foo","avatarNumber":2,"tagLine":"foo"}`), true)
	require.NoError(t, err)

	assert.Equal(t, "CowboyCoder", p.Nickname)
	assert.Equal(t, 2, p.AvatarNumber)

	stored, err := store.FindByNickname(context.Background(), "CowboyCoder")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvatarNumber)
	assert.Equal(t, 7, stored.PowerLevel, "power level is not client-settable")

	_, err = store.FindByNickname(context.Background(), "foo")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdate_ReplaceClearsMissingTagLine(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "CowboyCoder", 5, strPtr("foo"))

	p, err := svc.Update(context.Background(), "CowboyCoder", payload(t, `{"avatarNumber":3}`), true)
	require.NoError(t, err)
	assert.Nil(t, p.TagLine)
}

func TestUpdate_ReplaceRequiresAvatar(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "CowboyCoder", 5, nil)

	_, err := svc.Update(context.Background(), "CowboyCoder", payload(t, `{"tagLine":"bar"}`), true)
	require.ErrorIs(t, err, apperror.ErrValidation)

	stored, _ := store.FindByNickname(context.Background(), "CowboyCoder")
	assert.Equal(t, 5, stored.AvatarNumber)
	assert.Nil(t, stored.TagLine)
}

func TestUpdate_PatchKeepsAbsentFields(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "CowboyCoder", 5, strPtr("foo"))

	p, err := svc.Update(context.Background(), "CowboyCoder", payload(t, `{"tagLine":"bar"}`), false)
	require.NoError(t, err)

	assert.Equal(t, 5, p.AvatarNumber)
	require.NotNil(t, p.TagLine)
	assert.Equal(t, "bar", *p.TagLine)
}

func TestUpdate_PatchEmptyPayloadIsNoop(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "CowboyCoder", 5, strPtr("foo"))

	p, err := svc.Update(context.Background(), "CowboyCoder", form.Payload{}, false)
	require.NoError(t, err)
	assert.Equal(t, 5, p.AvatarNumber)
	assert.Equal(t, "foo", *p.TagLine)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestProgrammerService(t)

	_, err := svc.Update(context.Background(), "nobody", payload(t, `{"avatarNumber":1}`), true)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdate_StoreFailure(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "CowboyCoder", 5, nil)
	store.updateErr = errDatabaseDown

	_, err := svc.Update(context.Background(), "CowboyCoder", payload(t, `{"avatarNumber":1}`), false)
	assert.ErrorIs(t, err, errDatabaseDown)
}

func TestDelete_Idempotent(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "UnitTester", 3, nil)

	require.NoError(t, svc.Delete(context.Background(), "UnitTester"))
	assert.Empty(t, store.programmers)

	assert.NoError(t, svc.Delete(context.Background(), "UnitTester"), "second delete")
	assert.NoError(t, svc.Delete(context.Background(), "never-existed"))
}

func TestDelete_StoreFailure(t *testing.T) {
	svc, store := newTestProgrammerService(t)
	seedProgrammer(t, store, "UnitTester", 3, nil)
	store.deleteErr = errDatabaseDown

	assert.ErrorIs(t, svc.Delete(context.Background(), "UnitTester"), errDatabaseDown)
}
