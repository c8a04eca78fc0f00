package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// privateKeyEnv is read when --private-key is not given.
const privateKeyEnv = "LOBSTERPAD_PRIVATE_KEY"

// readImage loads an image file for upload.
func readImage(path string) (*types.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s does not look like an image (%s)", path, contentType)
	}
	return &types.Image{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// resolvePrivateKey picks the flag, then the environment, then the active stored wallet.
func resolvePrivateKey(flag string, deps *runtimeDeps) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(privateKeyEnv); env != "" {
		return env
	}
	if deps != nil && deps.keyring != nil {
		if w, ok := deps.keyring.Active(); ok {
			return w.PrivateKey
		}
	}
	return ""
}

func formatSOL(lamports uint64) string {
	return fmt.Sprintf("%.9f SOL", float64(lamports)/constants.LamportsPerSOL)
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****"
	}
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func secDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
