package backups

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/microhabit/internal/backup"
	"github.com/julianstephens/microhabit/internal/cli"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	backupPath, err := ctx.Backups().CreateBackup(habits)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s (%d habit(s))\n", filepath.Base(backupPath), len(habits))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" optional:"" help:"Path or filename of the backup to restore (default: latest)."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()

	backupPath, err := c.resolve(mgr)
	if err != nil {
		return err
	}
	habits, err := mgr.ReadBackup(backupPath)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Replace all habits with the %d in %s?", len(habits), filepath.Base(backupPath))).
			Description("A backup of the current habits is created first. Reminders are rescheduled.").
			Affirmative("Restore").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	current, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	if _, err := mgr.CreateBackup(current); err != nil {
		return fmt.Errorf("failed to back up current habits before restore: %w", err)
	}

	keep := make(map[string]bool, len(habits))
	for _, h := range habits {
		keep[h.ID] = true
	}
	bg := context.Background()
	for _, h := range current {
		if keep[h.ID] {
			continue
		}
		if err := ctx.RemoveHabit(bg, h); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
	}
	for _, h := range habits {
		if err := ctx.SaveHabit(h); err != nil {
			return fmt.Errorf("restore failed on habit %q: %w", h.Name, err)
		}
		ctx.SyncReminders(bg, h)
	}

	ctx.Printf("✓ Restored %d habit(s) from %s\n", len(habits), filepath.Base(backupPath))
	return nil
}

// resolve finds the backup by absolute path, working directory, then backup directory.
func (c *BackupRestoreCmd) resolve(mgr *backup.Manager) (string, error) {
	if c.BackupFile == "" {
		latest, ok, err := mgr.Latest()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("no backups found in %s", mgr.GetBackupDir())
		}
		return latest.Path, nil
	}

	if filepath.IsAbs(c.BackupFile) {
		if _, err := os.Stat(c.BackupFile); err != nil {
			return "", fmt.Errorf("backup file not found: %s", c.BackupFile)
		}
		return c.BackupFile, nil
	}
	if _, err := os.Stat(c.BackupFile); err == nil {
		return filepath.Abs(c.BackupFile)
	}
	candidate := filepath.Join(mgr.GetBackupDir(), c.BackupFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.GetBackupDir())
}
