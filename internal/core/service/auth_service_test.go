package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

type authFixture struct {
	svc      *AuthService
	profiles *stubProfiles
	identity *stubIdentity
	backend  *stubBackend
	session  *SessionStore
}

func newAuthFixture() *authFixture {
	profiles := newStubProfiles()
	identity := newStubIdentity()
	backend := newStubBackend()
	directory := NewDirectoryService(profiles, zerolog.Nop())
	return &authFixture{
		svc:      NewAuthService(directory, identity, zerolog.Nop()),
		profiles: profiles,
		identity: identity,
		backend:  backend,
		session:  NewSessionStore(backend, "device-1", zerolog.Nop()),
	}
}

func validInput(email, role string) ports.RegisterInput {
	return ports.RegisterInput{
		Email:    email,
		Password: "pass123",
		FullName: "Ana Coach",
		Role:     role,
		Age:      31,
		Category: "indoor",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.Register(context.Background(), validInput(" Ana@Club.io ", "indoor_coach"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "ana@club.io" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	accountID := f.identity.ids["ana@club.io"]
	if accountID == "" || user.ID != accountID {
		t.Fatalf("profile id %q does not match account id %q", user.ID, accountID)
	}
	stored := f.profiles.users[accountID]
	if stored == nil || stored.Role != domain.RoleIndoorCoach {
		t.Fatalf("unexpected stored profile: %+v", stored)
	}
	if len(f.backend.keys()) != 0 {
		t.Fatalf("registration must not create a session, got %v", f.backend.keys())
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()

	cases := map[string]ports.RegisterInput{
		"missing email": validInput("", "indoor_player"),
		"bad email":     validInput("not-an-email", "indoor_player"),
		"unknown role":  validInput("a@club.io", "referee"),
	}
	short := validInput("a@club.io", "indoor_player")
	short.Password = "123"
	cases["short password"] = short

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if f.identity.createCalls != 0 {
		t.Fatalf("validation failures must not reach the provider")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	first, err := f.svc.Register(ctx, validInput("bob@club.io", "outdoor_player"))
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	again := validInput("bob@club.io", "indoor_coach")
	again.FullName = "Someone Else"
	_, err = f.svc.Register(ctx, again)
	if !errors.Is(err, domain.ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
	if f.identity.createCalls != 1 {
		t.Fatalf("duplicate must not call the provider, calls=%d", f.identity.createCalls)
	}

	stored := f.profiles.users[first.ID]
	if stored.FullName != first.FullName || stored.Role != first.Role {
		t.Fatalf("first record changed: %+v", stored)
	}
}

func TestAuthService_Register_ProviderDuplicate(t *testing.T) {
	f := newAuthFixture()
	f.identity.accounts["bob@club.io"] = "other"

	_, err := f.svc.Register(context.Background(), validInput("bob@club.io", "outdoor_player"))
	if !errors.Is(err, domain.ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
	if len(f.identity.deleted) != 0 {
		t.Fatalf("nothing was created, nothing should be deleted: %v", f.identity.deleted)
	}
}

func TestAuthService_Register_ProviderFailure(t *testing.T) {
	f := newAuthFixture()
	f.identity.createErr = domain.ErrProviderUnavailable

	_, err := f.svc.Register(context.Background(), validInput("c@club.io", "indoor_player"))
	if !errors.Is(err, domain.ErrAccountCreateFailed) {
		t.Fatalf("expected ErrAccountCreateFailed, got %v", err)
	}
	if len(f.profiles.users) != 0 {
		t.Fatalf("no profile expected after provider failure")
	}
}

func TestAuthService_Register_RollbackOnProfileFailure(t *testing.T) {
	f := newAuthFixture()
	f.profiles.insertErr = errors.New("write timeout")

	_, err := f.svc.Register(context.Background(), validInput("d@club.io", "indoor_player"))
	if !errors.Is(err, domain.ErrProfileSaveFailed) {
		t.Fatalf("expected ErrProfileSaveFailed, got %v", err)
	}
	if len(f.identity.deleted) != 1 || f.identity.deleted[0] != "acct-d@club.io" {
		t.Fatalf("expected the created account to be deleted, got %v", f.identity.deleted)
	}
	if _, ok := f.identity.accounts["d@club.io"]; ok {
		t.Fatalf("account still present after rollback")
	}
	if len(f.profiles.users) != 0 {
		t.Fatalf("no profile expected after rollback")
	}
}

func TestAuthService_Register_ProfileRace(t *testing.T) {
	f := newAuthFixture()
	// Another profile already holds the email under a different id, but the
	// directory pre-check misses it.
	f.profiles.users["other"] = &domain.User{ID: "other", Email: "e@club.io"}
	dir := &missingDirectory{DirectoryService: NewDirectoryService(f.profiles, zerolog.Nop())}
	svc := NewAuthService(dir, f.identity, zerolog.Nop())

	_, err := svc.Register(context.Background(), validInput("e@club.io", "indoor_player"))
	if !errors.Is(err, domain.ErrProfileSaveFailed) || !errors.Is(err, domain.ErrEmailRegistered) {
		t.Fatalf("expected ErrProfileSaveFailed and ErrEmailRegistered, got %v", err)
	}
	if len(f.identity.deleted) != 1 {
		t.Fatalf("expected rollback, got %v", f.identity.deleted)
	}
}

// missingDirectory reports every email as unknown.
type missingDirectory struct {
	*DirectoryService
}

func (d *missingDirectory) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, nil
}

func TestAuthService_Register_DirectoryUnavailable(t *testing.T) {
	f := newAuthFixture()
	f.profiles.queryErr = errors.New("no reachable servers")

	_, err := f.svc.Register(context.Background(), validInput("f@club.io", "indoor_player"))
	if !errors.Is(err, domain.ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
	if f.identity.createCalls != 0 {
		t.Fatalf("provider must not be called when the duplicate check fails")
	}
}

func TestAuthService_Register_CancelledContext(t *testing.T) {
	f := newAuthFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Register(ctx, validInput("g@club.io", "indoor_player"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if f.identity.createCalls != 0 {
		t.Fatalf("cancelled registration must not create an account")
	}
}

func TestAuthService_Login_SetsSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, validInput("coach@club.io", "outdoor_coach")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := f.svc.Login(ctx, f.session, "Coach@Club.io", "pass123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Role != domain.RoleOutdoorCoach {
		t.Fatalf("unexpected role %s", user.Role)
	}
	if !f.session.IsLoggedIn(ctx) {
		t.Fatalf("expected session to be logged in")
	}
	sess := f.session.Session(ctx)
	if sess.Role != domain.RoleOutdoorCoach || sess.Email != "coach@club.io" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestAuthService_Login_BadCredentialsAndMissingProfileLookAlike(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, validInput("h@club.io", "indoor_player")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, wrongPw := f.svc.Login(ctx, f.session, "h@club.io", "nope")

	// Account without a profile.
	f.identity.accounts["orphan@club.io"] = "pass123"
	f.identity.ids["orphan@club.io"] = "acct-orphan"
	_, noProfile := f.svc.Login(ctx, f.session, "orphan@club.io", "pass123")

	for _, err := range []error{wrongPw, noProfile} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if wrongPw.Error() != noProfile.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPw, noProfile)
	}

	var a, b *domain.LoginRejection
	if !errors.As(wrongPw, &a) || !errors.As(noProfile, &b) {
		t.Fatalf("expected LoginRejection values")
	}
	if a.Reason != domain.LoginReasonBadCredentials || b.Reason != domain.LoginReasonProfileMissing {
		t.Fatalf("unexpected reasons %q, %q", a.Reason, b.Reason)
	}
	if f.session.IsLoggedIn(ctx) {
		t.Fatalf("rejected login must not create a session")
	}
}

func TestAuthService_Login_DirectoryUnavailable(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.identity.accounts["i@club.io"] = "pass123"
	f.identity.ids["i@club.io"] = "acct-i"
	f.profiles.queryErr = errors.New("timeout")

	_, err := f.svc.Login(ctx, f.session, "i@club.io", "pass123")
	if !errors.Is(err, domain.ErrDirectoryUnavailable) {
		t.Fatalf("expected ErrDirectoryUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("directory outage must not look like bad credentials")
	}
}

func TestAuthService_Login_ProviderUnavailable(t *testing.T) {
	f := newAuthFixture()
	f.identity.signInErr = domain.ErrProviderUnavailable

	_, err := f.svc.Login(context.Background(), f.session, "j@club.io", "pass123")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestAuthService_Login_SessionSaveFailure(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, validInput("k@club.io", "indoor_player")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	f.backend.saveErr = errors.New("read only replica")

	_, err := f.svc.Login(ctx, f.session, "k@club.io", "pass123")
	if !errors.Is(err, domain.ErrSessionSaveFailed) {
		t.Fatalf("expected ErrSessionSaveFailed, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, validInput("l@club.io", "indoor_player")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := f.svc.Login(ctx, f.session, "l@club.io", "pass123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.svc.Logout(ctx, f.session); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if f.session.IsLoggedIn(ctx) || f.session.CurrentUser(ctx) != nil {
		t.Fatalf("session not cleared")
	}
	if err := f.svc.Logout(ctx, f.session); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestAuthService_Restore(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if _, _, err := f.svc.Restore(ctx, f.session); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if _, err := f.svc.Register(ctx, validInput("m@club.io", "indoor_coach")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := f.svc.Login(ctx, f.session, "m@club.io", "pass123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, dest, err := f.svc.Restore(ctx, f.session)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if user.Email != "m@club.io" || dest != domain.DestinationCoachHome {
		t.Fatalf("unexpected restore result: %+v %s", user, dest)
	}
}

func TestAuthService_Restore_UnreadableUserClearsSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.backend.data["session:device-1"] = map[string]string{
		domain.SessionKeyLoggedIn:      "true",
		domain.SessionKeyUserObject:    "{broken",
		domain.SessionKeySchemaVersion: domain.SessionSchemaVersion,
	}

	if _, _, err := f.svc.Restore(ctx, f.session); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if len(f.backend.keys()) != 0 {
		t.Fatalf("expected unreadable session to be cleared")
	}
}

func TestAuthService_SendPasswordReset(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.identity.accounts["n@club.io"] = "pass123"

	if err := f.svc.SendPasswordReset(ctx, "N@club.io"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if len(f.identity.resets) != 1 || f.identity.resets[0] != "n@club.io" {
		t.Fatalf("unexpected resets: %v", f.identity.resets)
	}

	if err := f.svc.SendPasswordReset(ctx, "ghost@club.io"); err != nil {
		t.Fatalf("unknown email must report success, got %v", err)
	}

	var ve *domain.ValidationError
	if err := f.svc.SendPasswordReset(ctx, "nope"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	f.identity.resetErr = domain.ErrProviderUnavailable
	if err := f.svc.SendPasswordReset(ctx, "n@club.io"); !errors.Is(err, domain.ErrPasswordResetFailed) {
		t.Fatalf("expected ErrPasswordResetFailed, got %v", err)
	}
}

func TestAuthService_ConfirmPasswordReset(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if err := f.svc.ConfirmPasswordReset(ctx, "valid-token", "newpass"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := f.svc.ConfirmPasswordReset(ctx, "stale", "newpass"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}

	var ve *domain.ValidationError
	if err := f.svc.ConfirmPasswordReset(ctx, "valid-token", "123"); !errors.As(err, &ve) || ve.Field != "password" {
		t.Fatalf("expected password ValidationError, got %v", err)
	}
	if err := f.svc.ConfirmPasswordReset(ctx, " ", "newpass"); !errors.As(err, &ve) || ve.Field != "token" {
		t.Fatalf("expected token ValidationError, got %v", err)
	}
}
