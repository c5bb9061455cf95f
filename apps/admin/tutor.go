package main

import (
	"context"
	"fmt"

	"github.com/ajolotes/ajolotes/core/tutor"
)

// addTutor registers a tutor without going through the website.
func (cli *commandLine) addTutor(ctx context.Context, nt tutor.NewTutor) error {
	t, err := cli.tutorSvc.Register(ctx, nt)
	if err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("tutor %d (%s) added", t.ID, t.Email))
	return nil
}

// deleteTutor removes the tutor and, through the foreign key, their children.
func (cli *commandLine) deleteTutor(ctx context.Context, email string) error {
	t, err := cli.tutorSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = cli.tutorSvc.Delete(ctx, t.ID); err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("tutor %d (%s) deleted", t.ID, t.Email))
	return nil
}
