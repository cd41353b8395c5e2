// Package transfer moves habits in and out of storage as JSON documents.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
)

// ImportCmd reads an export document or the mobile app's habit blob.
type ImportCmd struct {
	File    string `arg:"" type:"existingfile" help:"JSON file to import."`
	Replace bool   `help:"Overwrite habits that already exist (matched by id)."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	habits, err := storage.DecodeHabits(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.File, err)
	}

	imported, skipped := 0, 0
	for _, h := range habits {
		if !c.Replace {
			if _, err := ctx.Store.GetHabit(h.ID); err == nil {
				skipped++
				continue
			} else if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}
		if err := ctx.SaveHabit(h); err != nil {
			return fmt.Errorf("habit %q: %w", h.Name, err)
		}
		ctx.SyncReminders(context.Background(), h)
		imported++
	}

	ctx.Printf("Imported %d habit(s)", imported)
	if skipped > 0 {
		ctx.Printf(", skipped %d existing (use --replace to overwrite)", skipped)
	}
	ctx.Println()
	return nil
}

type ExportCmd struct {
	File string `arg:"" help:"Destination file, or - for stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	if habits == nil {
		habits = []models.Habit{}
	}

	data, err := json.MarshalIndent(storage.Document{Version: storage.DocumentVersion, Habits: habits}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode habits: %w", err)
	}
	data = append(data, '\n')

	if c.File == "-" {
		_, err := ctx.Stdout().Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(c.File, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.File, err)
	}
	ctx.Printf("Exported %d habit(s) to %s\n", len(habits), c.File)
	return nil
}
