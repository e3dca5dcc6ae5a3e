// internal/service/slug.go
package service

import (
	"fmt"

	"github.com/gosimple/slug"
)

// deriveSlug turns a campaign title into a unique slug. Collisions are
// resolved by appending -2, -3, ... until a free slug is found; the caller
// never sees a collision. The slug is derived once at create time and stays
// stable across later syncs even when the remote title changes.
func deriveSlug(title string, exists func(string) (bool, error)) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "campaign"
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
