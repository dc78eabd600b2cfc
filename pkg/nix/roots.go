package nix

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/nixtree/pkg/errors"
)

// ProfilesDir is where Nix keeps system and per-user profiles.
const ProfilesDir = "/nix/var/nix/profiles"

// DefaultRoots returns the system profile and the current user's profile,
// whichever exist. It fails with ErrCodeNoRoots when neither does.
func DefaultRoots(ctx context.Context) ([]string, error) {
	return defaultRoots(ctx, ProfilesDir, os.Getenv("USER"))
}

func defaultRoots(ctx context.Context, dir, user string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := []string{filepath.Join(dir, "system")}
	if user != "" {
		candidates = append(candidates, filepath.Join(dir, "per-user", user, "profile"))
	}

	var roots []string
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		return nil, errors.New(errors.ErrCodeNoRoots, "no default roots found, please specify a path")
	}
	return roots, nil
}
