package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// sessionFilePath 는 세션 쿠키를 저장할 파일 경로다. CHAT_SESSION_FILE 로 바꿀 수 있다.
func sessionFilePath() (string, error) {
	if p := os.Getenv("CHAT_SESSION_FILE"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gemini-chat", "session"), nil
}

func loadSessionToken() (string, error) {
	p, err := sessionFilePath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func saveSessionToken(token string) error {
	p, err := sessionFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

func clearSessionToken() error {
	p, err := sessionFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
