package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/tutor"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	tutorSvc tutor.Service
	logger   core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version)")
	fmt.Println("  addtutor -email EMAIL -names NAMES -surnames SURNAMES -role ROLE - register a tutor")
	fmt.Println("  resetpassword -email EMAIL - reset a tutor's password")
	fmt.Println("  deletetutor -email EMAIL - delete a tutor and their children")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addTutorCmd := flag.NewFlagSet("addtutor", flag.ContinueOnError)
	addTutorEmail := addTutorCmd.String("email", "", "The tutor's email. The password will be prompted next.")
	addTutorNames := addTutorCmd.String("names", "", "The tutor's names.")
	addTutorSurnames := addTutorCmd.String("surnames", "", "The tutor's surnames.")
	addTutorRole := addTutorCmd.String("role", tutor.RoleParent, "Padre, Tutor or Maestro.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The tutor's email. The password will be prompted next.")

	deleteTutorCmd := flag.NewFlagSet("deletetutor", flag.ContinueOnError)
	deleteTutorEmail := deleteTutorCmd.String("email", "", "The tutor's email.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	case "addtutor":
		if err := addTutorCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTutorEmail == "" {
			addTutorCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addTutorCmd.Usage()
			return errHelp
		}
		return cli.addTutor(ctx, tutor.NewTutor{
			Names:    *addTutorNames,
			Surnames: *addTutorSurnames,
			Email:    *addTutorEmail,
			Password: pwd,
			Role:     *addTutorRole,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	case "deletetutor":
		if err := deleteTutorCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteTutorEmail == "" {
			deleteTutorCmd.Usage()
			return errHelp
		}
		return cli.deleteTutor(ctx, *deleteTutorEmail)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Printf("Enter password (%d characters):", tutor.PasswordLength)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
