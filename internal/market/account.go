package market

import (
	"assethub.org/internal/authz"
	"assethub.org/internal/ids"
)

// RegisterInput carries the register form fields. The OTP must have been
// issued for the register flow via RequestOTP.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            Role
	OTP             string
}

// Register creates a new account. The created user is the now-authenticated
// session user: it starts online with balance 0, the default profile and the
// "New Member" tag.
func (s *Store) Register(in RegisterInput) (User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return User{}, ErrMissingField
	}
	role := in.Role
	if role == "" {
		role = RoleUser
	}
	// Admin and owner accounts are never self-registered.
	if role != RoleUser && role != RoleCreator {
		return User{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == in.Username {
			return User{}, ErrDuplicateUsername
		}
		if u.Email == in.Email {
			return User{}, ErrDuplicateEmail
		}
	}
	if len(in.Password) < 6 {
		return User{}, ErrWeakPassword
	}
	if in.Password != in.ConfirmPassword {
		return User{}, ErrPasswordMismatch
	}
	if err := s.verifyOTP(OTPRegister, in.Email, in.OTP); err != nil {
		return User{}, err
	}

	now := s.now()
	u := &User{
		ID:       ids.New(),
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
		Profile:  defaultProfile(),
		Tags:     []string{TagNewMember},
		Balance:  0,
		JoinDate: now,
		LastSeen: now,
		IsOnline: true,
	}
	s.users = append(s.users, u)
	s.usersByID[u.ID] = u
	return cloneUser(u), nil
}

// Login matches the identifier against username or email and compares the
// password exactly. On success the user is marked online and last-seen is
// refreshed.
func (s *Store) Login(identifier, password string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if (u.Username == identifier || u.Email == identifier) && u.Password == password {
			u.IsOnline = true
			u.LastSeen = s.now()
			return cloneUser(u), nil
		}
	}
	return User{}, ErrInvalidCredentials
}

// Logout refreshes last-seen. It deliberately leaves IsOnline untouched:
// presence persists until the next login.
func (s *Store) Logout(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return ErrNotFound
	}
	u.LastSeen = s.now()
	return nil
}

// ResetPassword overwrites the password for the account matching the email.
// The OTP must have been issued for the reset flow.
func (s *Store) ResetPassword(email, otp, newPassword string) error {
	if email == "" || newPassword == "" {
		return ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByEmail(email)
	if u == nil {
		return ErrEmailNotFound
	}
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}
	if err := s.verifyOTP(OTPReset, email, otp); err != nil {
		return err
	}
	u.Password = newPassword
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Store) ChangePassword(userID, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return ErrNotFound
	}
	if u.Password != oldPassword {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}
	u.Password = newPassword
	return nil
}

// UpdateProfile replaces the user's profile wholesale.
func (s *Store) UpdateProfile(userID string, p Profile) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Profile = p
	return cloneUser(u), nil
}

// CreateAdmin creates an administrator account from the admin panel. The
// flow bypasses OTP verification; the admin tag is auto-assigned.
func (s *Store) CreateAdmin(actorID, username, email, password string) (User, error) {
	if username == "" || email == "" || password == "" {
		return User{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.usersByID[actorID]
	if !ok {
		return User{}, ErrNotFound
	}
	if !authz.Can(string(actor.Role), authz.ActionCreateAdmin) {
		return User{}, ErrAccessDenied
	}
	for _, u := range s.users {
		if u.Username == username {
			return User{}, ErrDuplicateUsername
		}
		if u.Email == email {
			return User{}, ErrDuplicateEmail
		}
	}
	if len(password) < 6 {
		return User{}, ErrWeakPassword
	}

	now := s.now()
	u := &User{
		ID:       ids.New(),
		Username: username,
		Email:    email,
		Password: password,
		Role:     RoleAdmin,
		Profile:  defaultProfile(),
		Tags:     []string{TagAdmin},
		JoinDate: now,
		LastSeen: now,
	}
	s.users = append(s.users, u)
	s.usersByID[u.ID] = u
	return cloneUser(u), nil
}

// findByEmail is the shared lookup used by the OTP and reset flows.
// Callers hold s.mu.
func (s *Store) findByEmail(email string) *User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}
