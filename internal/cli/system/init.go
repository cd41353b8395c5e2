package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/storage/postgres"
	"github.com/julianstephens/microhabit/internal/utils"
)

type InitCmd struct {
	Force bool `help:"Delete an existing database file before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	isFile := dbPath != postgres.ConfigPath

	if c.Force && isFile {
		if _, err := os.Stat(dbPath); err == nil {
			// close first so the file is not locked
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized microhabit storage at: %s\n", dbPath)

	if ctx.SettingsPath == "" {
		return nil
	}
	path, err := utils.ExpandHome(ctx.SettingsPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := ctx.Settings.Save(path); err != nil {
			return err
		}
		ctx.Printf("Wrote default settings to: %s\n", path)
	}
	return nil
}
