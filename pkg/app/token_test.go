package app

import (
	"testing"
	"time"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    1 * time.Hour,
		Issuer:    "test-issuer",
	}
	tm := NewTokenManager(cfg)

	uid := int64(1001)

	// 1. 测试生成和解析
	token, err := tm.GenerateToken(uid)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsedClaims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if parsedClaims.UID != uid {
		t.Errorf("Expected UID %d, got %d", uid, parsedClaims.UID)
	}
	if parsedClaims.Issuer != cfg.Issuer {
		t.Errorf("Expected issuer %q, got %q", cfg.Issuer, parsedClaims.Issuer)
	}

	// 验证 ExpiresAt (由于只存了秒级 Unix 戳，允许 1 秒内的误差)
	now := time.Now()
	expectedExp := now.Add(cfg.Expiry)
	if parsedClaims.ExpiresAt.Unix() < expectedExp.Unix()-1 || parsedClaims.ExpiresAt.Unix() > expectedExp.Unix()+1 {
		t.Errorf("Expected ExpiresAt around %v, got %v", expectedExp, parsedClaims.ExpiresAt)
	}

	// 2. 测试错误的密钥
	wrongKeyCfg := cfg
	wrongKeyCfg.SecretKey = "wrong-secret"
	tmWrongKey := NewTokenManager(wrongKeyCfg)

	wrongToken, _ := tmWrongKey.GenerateToken(uid)
	if _, err = tm.ParseToken(wrongToken); err == nil {
		t.Error("Expected error when parsing token with wrong secret key, but got nil")
	}

	// 3. 测试篡改后的 Token
	tamperedToken := token + "tampered"
	if _, err = tm.ParseToken(tamperedToken); err == nil {
		t.Error("Expected error when parsing tampered token, but got nil")
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "user-secret",
		Expiry:    -1 * time.Minute,
	})

	token, err := tm.GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err = tm.ParseToken(token); err == nil {
		t.Error("Expected error when parsing expired token, but got nil")
	}
}

func TestTokenManager_Defaults(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "k"})
	if tm.config.Expiry != 7*24*time.Hour {
		t.Errorf("Expected default expiry 168h, got %v", tm.config.Expiry)
	}
	if tm.config.Issuer != DefaultTokenIssuer {
		t.Errorf("Expected default issuer %q, got %q", DefaultTokenIssuer, tm.config.Issuer)
	}
}
