package auth

import "testing"

func TestGenerateRandomToken(t *testing.T) {
	a, err := generateRandomToken(48)
	if err != nil {
		t.Fatalf("generateRandomToken: %v", err)
	}
	b, err := generateRandomToken(48)
	if err != nil {
		t.Fatalf("generateRandomToken: %v", err)
	}
	if a == b {
		t.Error("two generated tokens should differ")
	}
	if len(a) == 0 {
		t.Error("token is empty")
	}
}

func TestHashSHA256Stable(t *testing.T) {
	if hashSHA256("token") != hashSHA256("token") {
		t.Error("hash should be deterministic")
	}
	if hashSHA256("token") == hashSHA256("other") {
		t.Error("different inputs should not collide")
	}
	if len(hashSHA256("token")) != 64 {
		t.Error("expected hex-encoded sha256")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if err := comparePassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := comparePassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}
