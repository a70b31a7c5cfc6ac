// ABOUTME: PIN-gated image vault kept only in the device cache.
// ABOUTME: Unlocking needs the PIN and a workout logged today.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/harperreed/levelup/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// SetVaultPIN replaces the vault PIN.
func (c *Coordinator) SetVaultPIN(ctx context.Context, pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, cache, err := c.user()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), c.pinCost)
	if err != nil {
		return fmt.Errorf("hash PIN: %w", err)
	}
	if err := cache.SetVaultPIN(string(hash)); err != nil {
		return fmt.Errorf("save PIN: %w", err)
	}
	return nil
}

// UnlockVault returns the vault images when pin matches and today's workout
// log has minutes.
func (c *Coordinator) UnlockVault(ctx context.Context, pin string) ([]models.VaultImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, cache, err := c.user()
	if err != nil {
		return nil, err
	}

	hash, err := cache.VaultPIN()
	if err != nil {
		return nil, fmt.Errorf("read PIN: %w", err)
	}
	if hash == "" {
		return nil, fmt.Errorf("%w: no PIN set", ErrVaultLocked)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrVaultLocked
		}
		return nil, fmt.Errorf("check PIN: %w", err)
	}

	entries, err := cache.WorkoutLog()
	if err != nil {
		return nil, fmt.Errorf("read workout log: %w", err)
	}
	today := c.Today()
	worked := false
	for _, e := range entries {
		if e.Date == today && e.Minutes > 0 {
			worked = true
			break
		}
	}
	if !worked {
		return nil, ErrWorkoutRequired
	}

	return cache.VaultImages()
}

// AddVaultImage stores an image in the vault. src is the encoded image.
func (c *Coordinator) AddVaultImage(ctx context.Context, src, title string) (*models.VaultImage, error) {
	if src == "" {
		return nil, fmt.Errorf("image data is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, cache, err := c.user()
	if err != nil {
		return nil, err
	}
	images, err := cache.VaultImages()
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	img := models.NewVaultImage(src, strings.TrimSpace(title))
	img.AddedAt = c.now()
	images = append(images, *img)
	if err := cache.SetVaultImages(images); err != nil {
		return nil, fmt.Errorf("save vault: %w", err)
	}
	return img, nil
}

// RemoveVaultImage deletes an image from the vault by ID or unique prefix.
func (c *Coordinator) RemoveVaultImage(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, cache, err := c.user()
	if err != nil {
		return err
	}
	images, err := cache.VaultImages()
	if err != nil {
		return fmt.Errorf("read vault: %w", err)
	}

	i := findByID(len(images), func(i int) string { return images[i].ID }, id)
	if i < 0 {
		return fmt.Errorf("image not found: %s", id)
	}
	images = append(images[:i], images[i+1:]...)
	if err := cache.SetVaultImages(images); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}
	return nil
}
