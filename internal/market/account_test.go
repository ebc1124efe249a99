package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move the store's time source forward.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore() (*Store, *fakeClock) {
	c := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(WithClock(c.now))
	s.Seed()
	return s, c
}

func register(t *testing.T, s *Store, username, email, password string, role Role) User {
	t.Helper()
	otp, err := s.RequestOTP(OTPRegister, email)
	require.NoError(t, err)
	u, err := s.Register(RegisterInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		Role:            role,
		OTP:             otp.Code,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterCreatesSessionUser(t *testing.T) {
	s, c := newTestStore()
	u := register(t, s, "alice", "alice@x.com", "pw123456", RoleCreator)

	require.Equal(t, "alice", u.Username)
	require.Equal(t, RoleCreator, u.Role)
	require.EqualValues(t, 0, u.Balance)
	require.True(t, u.IsOnline)
	require.Equal(t, c.t, u.JoinDate)
	require.Contains(t, u.Tags, TagNewMember)
	require.Equal(t, "default", u.Profile.Theme)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newTestStore()
	register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	otp, err := s.RequestOTP(OTPRegister, "other@x.com")
	require.NoError(t, err)

	_, err = s.Register(RegisterInput{Username: "", Email: "e@x.com", Password: "pw123456"})
	require.ErrorIs(t, err, ErrMissingField)

	_, err = s.Register(RegisterInput{
		Username: "alice", Email: "other@x.com",
		Password: "pw123456", ConfirmPassword: "pw123456", OTP: otp.Code,
	})
	require.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = s.Register(RegisterInput{
		Username: "bob", Email: "alice@x.com",
		Password: "pw123456", ConfirmPassword: "pw123456", OTP: otp.Code,
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = s.Register(RegisterInput{
		Username: "bob", Email: "other@x.com",
		Password: "pw1", ConfirmPassword: "pw1", OTP: otp.Code,
	})
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.Register(RegisterInput{
		Username: "bob", Email: "other@x.com",
		Password: "pw123456", ConfirmPassword: "different", OTP: otp.Code,
	})
	require.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = s.Register(RegisterInput{
		Username: "bob", Email: "other@x.com",
		Password: "pw123456", ConfirmPassword: "pw123456", OTP: "000000",
	})
	require.ErrorIs(t, err, ErrInvalidOTP)

	_, err = s.Register(RegisterInput{
		Username: "root", Email: "root@x.com",
		Password: "pw123456", ConfirmPassword: "pw123456",
		Role: RoleOwner, OTP: otp.Code,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	s, c := newTestStore()
	register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	c.t = c.t.Add(time.Hour)

	u, err := s.Login("alice", "pw123456")
	require.NoError(t, err)
	require.True(t, u.IsOnline)
	require.Equal(t, c.t, u.LastSeen)

	u, err = s.Login("alice@x.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	_, err = s.Login("alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login("nobody", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Case sensitive, exact match.
	_, err = s.Login("Alice", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutKeepsPresence(t *testing.T) {
	s, _ := newTestStore()
	u := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	require.NoError(t, s.Logout(u.ID))

	got, err := s.UserByID(u.ID)
	require.NoError(t, err)
	// Presence persists until the next login.
	require.True(t, got.IsOnline)

	require.ErrorIs(t, s.Logout("missing"), ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	s, _ := newTestStore()
	register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	_, err := s.RequestOTP(OTPReset, "nobody@x.com")
	require.ErrorIs(t, err, ErrEmailNotFound)

	otp, err := s.RequestOTP(OTPReset, "alice@x.com")
	require.NoError(t, err)

	require.ErrorIs(t, s.ResetPassword("nobody@x.com", otp.Code, "newpass1"), ErrEmailNotFound)
	require.ErrorIs(t, s.ResetPassword("alice@x.com", otp.Code, "tiny"), ErrWeakPassword)
	require.ErrorIs(t, s.ResetPassword("alice@x.com", "999999", "newpass1"), ErrInvalidOTP)

	require.NoError(t, s.ResetPassword("alice@x.com", otp.Code, "newpass1"))
	_, err = s.Login("alice", "newpass1")
	require.NoError(t, err)
	_, err = s.Login("alice", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	s, _ := newTestStore()
	u := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	require.ErrorIs(t, s.ChangePassword(u.ID, "wrong", "newpass1"), ErrInvalidCredentials)
	require.ErrorIs(t, s.ChangePassword(u.ID, "pw123456", "tiny"), ErrWeakPassword)
	require.NoError(t, s.ChangePassword(u.ID, "pw123456", "newpass1"))

	_, err := s.Login("alice", "newpass1")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newTestStore()
	u := register(t, s, "alice", "alice@x.com", "pw123456", RoleUser)

	p := u.Profile
	p.DisplayName = "Alice"
	p.Bio = "builder of things"

	got, err := s.UpdateProfile(u.ID, p)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Profile.DisplayName)

	_, err = s.UpdateProfile("missing", p)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAdmin(t *testing.T) {
	s, _ := newTestStore()
	ownerID, err := s.OwnerID()
	require.NoError(t, err)
	plain := register(t, s, "bob", "bob@x.com", "pw123456", RoleUser)

	_, err = s.CreateAdmin(plain.ID, "mod", "mod@x.com", "pw123456")
	require.ErrorIs(t, err, ErrAccessDenied)

	admin, err := s.CreateAdmin(ownerID, "mod", "mod@x.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, admin.Role)
	require.Contains(t, admin.Tags, TagAdmin)

	// Admins may create further admins; OTP is bypassed in this flow.
	second, err := s.CreateAdmin(admin.ID, "mod2", "mod2@x.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, second.Role)

	_, err = s.CreateAdmin(ownerID, "mod", "again@x.com", "pw123456")
	require.ErrorIs(t, err, ErrDuplicateUsername)
}
