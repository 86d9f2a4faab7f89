package user

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/trezcool/ustawi/core"
)

func TestTokenGenerator(t *testing.T) {
	conf := core.NewTestConfig()
	clock := clockwork.NewFakeClockAt(time.Date(2021, time.March, 10, 12, 0, 0, 0, time.UTC))
	tg := NewTokenGenerator(conf, clock)

	usr := User{ID: "b3a2e0f4-54a1-4c3e-a0c2-6c1b8fd3b2a1", Email: "t@test.test", IsActive: true}
	_ = usr.SetPassword("pwd")

	validToken, err := tg.MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	pastTg := NewTokenGenerator(conf, clockwork.NewFakeClockAt(clock.Now().Add(-dayLate)))
	expiredToken, err := pastTg.MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}

	loggedIn := usr
	loggedIn.LastLogin = clock.Now()

	otherTg := NewTokenGenerator(&core.Config{SecretKey: "other", PasswordResetTimeoutDelta: conf.PasswordResetTimeoutDelta}, clock)
	forged, _ := otherTg.MakeToken(usr)

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: errInvalidToken},
		{name: "invalid parts len", usr: usr, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", usr: usr, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", usr: usr, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", usr: usr, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "other secret", usr: usr, token: forged, wantErr: errInvalidToken},
		{name: "used after login", usr: loggedIn, token: validToken, wantErr: errInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tg.verifyToken(tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeUID(t *testing.T) {
	usr := User{ID: "b3a2e0f4-54a1-4c3e-a0c2-6c1b8fd3b2a1"}
	id, err := decodeUID(EncodeUID(usr))
	if err != nil {
		t.Fatalf("decodeUID(): %v", err)
	}
	if id != usr.ID {
		t.Errorf("decodeUID() = %q, want %q", id, usr.ID)
	}
	if _, err := decodeUID("%%%"); err == nil {
		t.Error("decodeUID() expected an error")
	}
}
