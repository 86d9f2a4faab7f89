package main

import (
	"errors"

	"github.com/trezcool/ustawi/storage/database"
)

var (
	gooseRunFunc = database.RunMigration // mockable

	errNoDB = errors.New("migrations need the postgres database engine")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDB
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
