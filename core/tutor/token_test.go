package tutor

import (
	"strings"
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	const (
		secret = "secret"
		ttl    = 15 * time.Minute
	)
	tt0 := Tutor{ID: 7, Names: "Rosa", Surnames: "López", Email: "rosa@mail.com", Role: RoleParent}

	validToken, err := makeToken(tt0, secret, ttl)
	if err != nil {
		t.Fatalf("makeToken() error = %v", err)
	}
	otherToken, _ := makeToken(tt0, secret, ttl)
	if otherToken == validToken {
		t.Error("makeToken() returned the same token twice")
	}
	foreignToken, _ := makeToken(tt0, "another secret", ttl)
	noIDToken, _ := makeToken(Tutor{}, secret, ttl)

	// generate an expired token
	late := ttl + time.Minute
	nowFunc = func() time.Time { return time.Now().Add(-late) }
	expiredToken, _ := makeToken(tt0, secret, ttl)
	nowFunc = time.Now // reset

	parts := strings.Split(validToken, ".")
	tamperedToken := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name    string
		token   string
		wantID  int64
		wantErr error
	}{
		{name: "no token", wantErr: ErrInvalidToken},
		{name: "garbage", token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "tampered", token: tamperedToken, wantErr: ErrInvalidToken},
		{name: "other secret", token: foreignToken, wantErr: ErrInvalidToken},
		{name: "no tutor id", token: noIDToken, wantErr: ErrInvalidToken},
		{name: "expired token", token: expiredToken, wantErr: ErrTokenExpired},
		{name: "valid token", token: validToken, wantID: tt0.ID},
		{name: "second valid token", token: otherToken, wantID: tt0.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := verifyToken(tt.token, secret)
			if err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if id != tt.wantID {
				t.Errorf("verifyToken() id = %d, want %d", id, tt.wantID)
			}
		})
	}
}
