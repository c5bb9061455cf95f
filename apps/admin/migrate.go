package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

// migrations are embedded in the binary, so commands writing migration files are refused
var errReadOnlyMigrations = errors.New("migrations are embedded: create and fix are not available")

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	switch args[0] {
	case "create", "fix":
		return errReadOnlyMigrations
	}
	if err := gooseRunFunc(ctx, cli.db, args[0], args[1:]...); err != nil {
		return err
	}
	cli.logger.Info("migrate " + args[0] + ": done")
	return nil
}
