package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	if err := cli.tutorSvc.ResetPassword(ctx, email, pwd); err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("password of %s reset", email))
	return nil
}
